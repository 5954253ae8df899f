package response

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/survivehub/internal/entity"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/dto"
	"anoa.com/survivehub/pkg/logger"
	"anoa.com/survivehub/pkg/ratelimit"
	"anoa.com/survivehub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const PrincipalKey = "principal"

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	p, err := GetPrincipal(c)
	if err != nil {
		return uuid.Nil, err
	}
	return p.UserID, nil
}

// GetPrincipal returns the authenticated principal set by the auth middleware.
func GetPrincipal(c *gin.Context) (entity.Principal, error) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return entity.Principal{}, apperror.ErrUnauthorized
	}
	p, ok := v.(entity.Principal)
	if !ok || p.UserID == uuid.Nil {
		return entity.Principal{}, apperror.ErrUnauthorized
	}
	return p, nil
}

// ParseUUIDParam reads a path parameter as a UUID.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, apperror.ErrBadRequest)
	}
	return id, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	var rateErr *ratelimit.Error
	if errors.As(err, &rateErr) {
		c.Header("Retry-After", fmt.Sprintf("%.0f", rateErr.RetryAfter.Seconds()))
	}

	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		logger.L().Errorw("internal error",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// ValidationError renders binding failures field by field.
func ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
}

// FormFile opens an optional multipart file. It returns nil when the field is absent;
// the caller must call the returned close func.
func FormFile(c *gin.Context, field string) (*dto.FileUpload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil || header == nil {
		return nil, func() {}, nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to read %s: %w", field, apperror.ErrBadRequest)
	}

	return &dto.FileUpload{
		Reader:      file,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, func() { _ = file.Close() }, nil
}
