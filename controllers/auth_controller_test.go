package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
)

func decodeToken(t *testing.T, body []byte) tokenEnvelope {
	t.Helper()
	var env tokenEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("failed to decode response %s: %v", body, err)
	}
	return env
}

func register(t *testing.T, env *testEnv, username, password, email string) tokenEnvelope {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
		"email":    email,
	})
	w := env.doJSON(t, http.MethodPost, "/auth/register", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status = %d, body %s", username, w.Code, w.Body.String())
	}
	return decodeToken(t, w.Body.Bytes())
}

func login(t *testing.T, env *testEnv, username, password string) (*tokenEnvelope, int) {
	t.Helper()
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	w := env.do(t, http.MethodPost, "/auth/login", "application/x-www-form-urlencoded", form.Encode(), nil)
	tok := decodeToken(t, w.Body.Bytes())
	return &tok, w.Code
}

func TestRegisterReturnsUsableToken(t *testing.T) {
	env := newTestEnv(t, &fakeFetcher{})

	tok := register(t, env, "alice", "s3cret", "alice@example.com")
	if tok.AccessToken == "" || tok.TokenType != "bearer" {
		t.Fatalf("token envelope = %+v", tok)
	}

	w := env.do(t, http.MethodGet, "/auth/users/me", "", "", map[string]string{
		"Authorization": "Bearer " + tok.AccessToken,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("me: status = %d, body %s", w.Code, w.Body.String())
	}
	var me struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Username != "alice" {
		t.Errorf("me.username = %q, want alice", me.Username)
	}
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	env := newTestEnv(t, &fakeFetcher{})

	register(t, env, "bob", "first-pw", "bob@example.com")

	body := `{"username":"bob","password":"second-pw","email":"elsewhere@example.com"}`
	w := env.doJSON(t, http.MethodPost, "/auth/register", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status = %d, want 409", w.Code)
	}

	// The first credential still works.
	if _, code := login(t, env, "bob", "first-pw"); code != http.StatusOK {
		t.Errorf("original login broken after conflict: status = %d", code)
	}
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	env := newTestEnv(t, &fakeFetcher{})

	register(t, env, "carol", "pw", "shared@example.com")

	w := env.doJSON(t, http.MethodPost, "/auth/register",
		`{"username":"dave","password":"pw","email":"shared@example.com"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate email: status = %d, want 409", w.Code)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t, &fakeFetcher{})

	w := env.doJSON(t, http.MethodPost, "/auth/register", `{"username":"nopass"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t, &fakeFetcher{})
	register(t, env, "erin", "correct-horse", "erin@example.com")

	tok, code := login(t, env, "erin", "correct-horse")
	if code != http.StatusOK || tok.AccessToken == "" {
		t.Fatalf("login: status = %d, token %+v", code, tok)
	}

	w := env.do(t, http.MethodGet, "/auth/protected", "", "", map[string]string{
		"Authorization": "Bearer " + tok.AccessToken,
	})
	if w.Code != http.StatusOK {
		t.Errorf("protected: status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestLoginFailureIsUniform(t *testing.T) {
	env := newTestEnv(t, &fakeFetcher{})
	register(t, env, "frank", "right-pw", "frank@example.com")

	wrongPw, codeWrongPw := login(t, env, "frank", "wrong-pw")
	unknown, codeUnknown := login(t, env, "nobody", "whatever")

	if codeWrongPw != http.StatusUnauthorized || codeUnknown != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want both 401", codeWrongPw, codeUnknown)
	}
	// Wrong password and unknown username must be indistinguishable.
	if wrongPw.Error != unknown.Error {
		t.Errorf("error messages differ: %q vs %q", wrongPw.Error, unknown.Error)
	}
}

func TestProtectedRejectsMissingAndBadTokens(t *testing.T) {
	env := newTestEnv(t, &fakeFetcher{})

	w := env.do(t, http.MethodGet, "/auth/users/me", "", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	w = env.do(t, http.MethodGet, "/auth/users/me", "", "", map[string]string{
		"Authorization": "Bearer not-a-real-token",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", w.Code)
	}
}
