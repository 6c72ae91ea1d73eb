package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"farm-records-backend/internal/parse"
)

// FieldIssue describes one problem with a request field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var registerOnce sync.Once

// registerValidators teaches gin's validator about JSON field names and the
// custom tags used by request structs.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})
		if err := v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := parse.ParseDate(fl.Field().String())
			return err == nil
		}); err != nil {
			log.Printf("failed to register isodate validator: %v", err)
		}
		if err := v.RegisterValidation("coordinates", func(fl validator.FieldLevel) bool {
			_, err := parse.ParseCoordinates(fl.Field().String())
			return err == nil
		}); err != nil {
			log.Printf("failed to register coordinates validator: %v", err)
		}
	})
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "isodate":
		return "must be a date (YYYY-MM-DD) or RFC3339 timestamp"
	case "coordinates":
		return `must be "lat,lng" in decimal degrees`
	}
	return "is invalid"
}

// bindJSON decodes and validates the request body into dst. On failure it
// writes a 400 response and returns false.
func bindJSON(c *gin.Context, dst any) bool {
	issues, ok := decodeJSON(c, dst)
	if !ok {
		return false
	}
	if len(issues) > 0 {
		validationFailed(c, issues...)
		return false
	}
	return true
}

// decodeJSON is bindJSON for handlers with checks of their own: field issues
// are returned so they can be reported together. It writes a 400 and returns
// false only when the body is not valid JSON.
func decodeJSON(c *gin.Context, dst any) ([]FieldIssue, bool) {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil, true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		issues := make([]FieldIssue, 0, len(verrs))
		for _, fe := range verrs {
			issues = append(issues, FieldIssue{Field: fe.Field(), Message: issueMessage(fe)})
		}
		return issues, true
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
	return nil, false
}

func hasIssue(issues []FieldIssue, field string) bool {
	for _, issue := range issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}

func validationFailed(c *gin.Context, issues ...FieldIssue) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": issues})
}

// isNullJSON reports whether raw is absent or the JSON literal null.
func isNullJSON(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
