package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "cardrelay/internal/platform/errors"
)

type lookupReq struct {
	Identifiers []string `json:"identifiers" validate:"required,min=1,max=50,dive,numeric,min=5"`
}

func req(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/v1/lookup", strings.NewReader(body))
}

func TestParseJSON_OK(t *testing.T) {
	got, err := ParseJSON[lookupReq](req(`{"identifiers":["12345","987654321"]}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(got.Identifiers) != 2 || got.Identifiers[1] != "987654321" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseJSON_Failures(t *testing.T) {
	cases := []struct {
		name string
		body string
		code perr.ErrorCode
		msg  string
	}{
		{"empty", ``, perr.ErrorCodeJSON, "empty body"},
		{"broken", `{"identifiers":`, perr.ErrorCodeJSON, "invalid JSON"},
		{"unknown field", `{"ids":["12345"]}`, perr.ErrorCodeJSON, "unknown field"},
		{"trailing", `{"identifiers":["12345"]}{}`, perr.ErrorCodeJSON, "trailing"},
		{"too short", `{"identifiers":["1234"]}`, perr.ErrorCodeValidation, "at least 5"},
		{"not digits", `{"identifiers":["12a45"]}`, perr.ErrorCodeValidation, "digits only"},
		{"missing", `{}`, perr.ErrorCodeValidation, "identifiers"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseJSON[lookupReq](req(c.body))
			if err == nil {
				t.Fatalf("expected error")
			}
			if perr.CodeOf(err) != c.code {
				t.Fatalf("code = %v, want %v (%v)", perr.CodeOf(err), c.code, err)
			}
			if !strings.Contains(err.Error(), c.msg) {
				t.Fatalf("err %q does not mention %q", err, c.msg)
			}
		})
	}
}

func TestStruct_AttachesField(t *testing.T) {
	type mirrors struct {
		Hosts []string `yaml:"hosts" validate:"required,dive,hostname"`
	}
	err := Struct(mirrors{Hosts: []string{"basket-01.wbbasket.ru", "not a host"}})
	e, ok := perr.As(err)
	if !ok || e.Field() == "" {
		t.Fatalf("expected field on validation error, got %v", err)
	}
	if Struct(mirrors{Hosts: []string{"basket-01.wbbasket.ru"}}) != nil {
		t.Fatalf("valid hosts should pass")
	}
}
