package service

import (
	"context"
	"testing"

	sponsorDto "anoa.com/survivehub/internal/modules/sponsor/dto"
	sponsorRepo "anoa.com/survivehub/internal/modules/sponsor/repository"
	"anoa.com/survivehub/internal/testutil"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/logger"
	"anoa.com/survivehub/pkg/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSponsors(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	store := testutil.NewMediaStore()
	svc := NewSponsorService(sponsorRepo.NewSponsorRepository(db), store, logger.Nop())

	admin := testutil.CreateAdmin(t, db, "boss").Principal()
	member := testutil.CreateUser(t, db, "fan").Principal()

	t.Run("members cannot create sponsors", func(t *testing.T) {
		_, err := svc.CreateSponsor(ctx, member, sponsorDto.SponsorRequest{BrandName: "Acme"}, nil, nil)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	sponsor, err := svc.CreateSponsor(ctx, admin,
		sponsorDto.SponsorRequest{BrandName: "Trail Gear Co", BrandProfile: "<p>Boots</p>"},
		testutil.PNG(t, "logo.png"), testutil.PNG(t, "cover.png"))
	require.NoError(t, err)

	t.Run("logo and cover are uploaded", func(t *testing.T) {
		assert.Equal(t, "trail-gear-co", sponsor.Slug)
		require.NotNil(t, sponsor.BrandLogo)
		require.NotNil(t, sponsor.PageCover)
		assert.Len(t, store.Uploads, 2)
	})

	t.Run("deals attach to the sponsor", func(t *testing.T) {
		_, err := svc.AddDeal(ctx, admin, sponsor.Slug, sponsorDto.DealRequest{Title: "10% off", Code: "HIKE10"}, nil)
		require.NoError(t, err)
		_, err = svc.AddDeal(ctx, admin, sponsor.Slug, sponsorDto.DealRequest{Title: "Free socks"}, testutil.PNG(t, "socks.png"))
		require.NoError(t, err)

		got, err := svc.GetSponsor(ctx, sponsor.Slug)
		require.NoError(t, err)
		require.Len(t, got.Deals, 2)
		assert.Equal(t, "10% off", got.Deals[0].Title)
		assert.Equal(t, "HIKE10", got.Deals[0].Code)
		assert.NotNil(t, got.Deals[1].ImageURL)
	})

	t.Run("deal for an unknown sponsor", func(t *testing.T) {
		_, err := svc.AddDeal(ctx, admin, "nobody", sponsorDto.DealRequest{Title: "x"}, nil)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		list, err := svc.ListSponsors(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("images need storage", func(t *testing.T) {
		noMedia := NewSponsorService(sponsorRepo.NewSponsorRepository(db), nil, logger.Nop())
		_, err := noMedia.CreateSponsor(ctx, admin, sponsorDto.SponsorRequest{BrandName: "Other"}, testutil.PNG(t, "l.png"), nil)
		assert.ErrorIs(t, err, media.ErrStorageDisabled)
	})
}
