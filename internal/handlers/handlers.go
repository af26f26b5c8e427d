package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/contentai/contentai-golang/internal/apperr"
	"github.com/contentai/contentai-golang/internal/auth"
	"github.com/contentai/contentai-golang/internal/cache"
	"github.com/contentai/contentai-golang/internal/generation"
	"github.com/contentai/contentai-golang/internal/logging"
	"github.com/contentai/contentai-golang/internal/middleware"
	"github.com/contentai/contentai-golang/internal/store"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store      *store.Store
	Generation *generation.Service
	Caches     *cache.Caches
	Issuer     *auth.Issuer
	Log        logging.Logger
}

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// caller identifies the requester for quota and history purposes.
func caller(c *gin.Context) generation.Caller {
	return generation.Caller{
		User:    middleware.CurrentUser(c),
		Session: c.ClientIP(),
	}
}

// pagination reads ?page=&per_page= with page >= 1 and per_page in 1..100.
func pagination(c *gin.Context) (page, perPage int, err error) {
	page, err = strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, apperr.Validation("page must be a positive integer")
	}
	perPage, err = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if err != nil || perPage < 1 || perPage > maxPerPage {
		return 0, 0, apperr.Validation("per_page must be between 1 and 100")
	}
	return page, perPage, nil
}

func pages(total, perPage int) int {
	return (total + perPage - 1) / perPage
}

// bindError turns a ShouldBindJSON failure into a client-facing message.
func bindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Validation(fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type))
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperr.Validation(fieldMessage(fieldErrs[0]))
	}
	if errors.Is(err, io.EOF) {
		return apperr.Validation("request body is required")
	}
	return apperr.Validation("invalid JSON body")
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s %s characters", field, bound, fe.Param())
		}
		return fmt.Sprintf("%s must be %s %s", field, bound, fe.Param())
	default:
		return field + " is invalid"
	}
}
