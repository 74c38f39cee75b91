package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/noticeboard/internal/app/system/auth"
)

// AdminIdentity returns a verified admin caller.
func AdminIdentity() auth.Identity {
	return auth.Identity{ID: "admin-1", Email: "admin@test.com", Role: auth.RoleAdmin}
}

// OrganizerIdentity returns a verified organizer caller. Pair it with
// Fixtures.CreateOrganizer using the same identityID.
func OrganizerIdentity(identityID string) auth.Identity {
	return auth.Identity{ID: identityID, Email: identityID + "@test.com", Role: auth.RoleOrganizer}
}

// MemberIdentity returns a verified caller with no special role.
func MemberIdentity(identityID string) auth.Identity {
	return auth.Identity{ID: identityID, Email: identityID + "@test.com", Role: auth.RoleMember}
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		t.Fatalf("encode request body: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AsIdentity injects id as the verified caller, bypassing token checks.
func AsIdentity(r *http.Request, id auth.Identity) *http.Request {
	return auth.WithIdentity(r, id)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %q)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", r.Body.String(), err)
	}
}
