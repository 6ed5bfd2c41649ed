package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPushoverSendsFormFields(t *testing.T) {
	var gotMethod, gotContentType, gotToken, gotUser, gotMessage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		_ = r.ParseForm()
		gotToken = r.PostFormValue("token")
		gotUser = r.PostFormValue("user")
		gotMessage = r.PostFormValue("message")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewPushover(srv.URL, "tok-1", "usr-1", nil)
	if err := n.Push(context.Background(), "Recording interest from Jo"); err != nil {
		t.Fatalf("Push: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("content type = %q", gotContentType)
	}
	if gotToken != "tok-1" || gotUser != "usr-1" {
		t.Errorf("credentials = %q/%q, want tok-1/usr-1", gotToken, gotUser)
	}
	if gotMessage != "Recording interest from Jo" {
		t.Errorf("message = %q", gotMessage)
	}
}

func TestPushoverNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":0,"errors":["application token is invalid"]}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewPushover(srv.URL, "bad", "usr", nil)
	if err := n.Push(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestPushoverUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	n := NewPushover(srv.URL, "tok", "usr", nil)
	if err := n.Push(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for unreachable endpoint")
	}
}

func TestPushoverEmptyEndpointDisabled(t *testing.T) {
	n := NewPushover("", "tok", "usr", nil)
	if _, ok := n.(*disabled); !ok {
		t.Fatalf("expected disabled notifier, got %T", n)
	}
	if err := n.Push(context.Background(), "anything"); err != nil {
		t.Fatalf("disabled Push: %v", err)
	}
}
