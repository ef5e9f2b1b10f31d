package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/KRaymonne/pro/internal/apperr"
)

func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestFormFloat(t *testing.T) {
	c, _ := testContext(t, formRequest(url.Values{"duree": {"44.1"}}), nil)
	value, err := formFloat(c, "duree")
	if err != nil || value != 44.1 {
		t.Fatalf("formFloat = %v, %v", value, err)
	}

	c, _ = testContext(t, formRequest(url.Values{}), nil)
	value, err = formFloat(c, "duree")
	if err != nil || value != 0 {
		t.Fatalf("absent field: %v, %v", value, err)
	}
}

func TestFormFloatMalformed(t *testing.T) {
	c, _ := testContext(t, formRequest(url.Values{"duree": {"quarante"}}), nil)
	if _, err := formFloat(c, "duree"); err == nil {
		t.Fatal("expected a validation error")
	} else {
		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
			t.Fatalf("error = %v, want validation", err)
		}
	}
}
