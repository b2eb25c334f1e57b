package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                             "/",
		"/metrics":                     "/metrics",
		"/v1/people":                   "/v1/people",
		"/v1/people/alice":             "/v1/people/:username",
		"/v1/people/alice/groups":      "/v1/people/:username/groups",
		"/v1/people/alice/permissions": "/v1/people/:username/permissions",
		"/v1/people/alice/extra":       "/v1/people/alice/extra",
		"/v1/people/alice?verbose=1":   "/v1/people/:username",
		"/v1/groups/10":                "/v1/groups/:id",
		"/v1/groups/10/members":        "/v1/groups/:id/members",
		"/v1/groups/10/ancestors":      "/v1/groups/:id/ancestors",
		"/v1/licenses/1":               "/v1/licenses/:id",
		"/v1/licenses/1/signed":        "/v1/licenses/:id/signed",
		"/v1/role-levels":              "/v1/role-levels",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
