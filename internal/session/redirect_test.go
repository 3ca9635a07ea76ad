package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRedirectNavigator_WritesSeeOther(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/signin", nil)
	nav := NewRedirectNavigator(w, r)

	if err := nav.Navigate(DashboardPath); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if got := w.Header().Get("Location"); got != DashboardPath {
		t.Errorf("Location = %q, want %q", got, DashboardPath)
	}
	if path, ok := nav.Navigated(); !ok || path != DashboardPath {
		t.Errorf("Navigated = (%q, %v)", path, ok)
	}
}

func TestRedirectNavigator_RejectsNonLocalPath(t *testing.T) {
	for _, path := range []string{"https://evil.example.com", "//evil.example.com", "dashboard"} {
		w := httptest.NewRecorder()
		nav := NewRedirectNavigator(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if err := nav.Navigate(path); err == nil {
			t.Errorf("Navigate(%q) should fail", path)
		}
		if _, ok := nav.Navigated(); ok {
			t.Errorf("Navigate(%q) should not redirect", path)
		}
	}
}

func TestRedirectNavigator_SecondNavigateFails(t *testing.T) {
	w := httptest.NewRecorder()
	nav := NewRedirectNavigator(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if err := nav.Navigate(SignInPath); err != nil {
		t.Fatalf("first Navigate: %v", err)
	}
	if err := nav.Navigate(DashboardPath); err == nil {
		t.Error("second Navigate should fail")
	}
	if got := w.Header().Get("Location"); got != SignInPath {
		t.Errorf("Location = %q, want %q", got, SignInPath)
	}
}

func TestStore_Logout_WithRedirectNavigator(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	r.AddCookie(&http.Cookie{Name: TokenKey, Value: "abc"})

	s := NewStore(NewCookieStore(w, r, CookieConfig{}), NewRedirectNavigator(w, r), nil)
	if !s.IsAuthenticated() {
		t.Fatal("should be authenticated from request cookie")
	}

	s.Logout()

	if s.IsAuthenticated() {
		t.Error("IsAuthenticated = true after Logout")
	}
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != SignInPath {
		t.Errorf("response = %d %q, want 303 %q", w.Code, w.Header().Get("Location"), SignInPath)
	}
}
