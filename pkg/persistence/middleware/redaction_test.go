package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/facet/pkg/adapters/memory"
	"github.com/aretw0/facet/pkg/domain"
	"github.com/aretw0/facet/pkg/persistence/middleware"
)

func TestRedactionMiddleware_Masking(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	mw, err := middleware.NewRedactionMiddleware([]string{"password", "ssn"})
	if err != nil {
		t.Fatal(err)
	}
	store := mw(underlying)

	record := domain.NewRecord("pii")
	record.Values["fSession::username"] = "jdoe"
	record.Values["fSession::user_password"] = "secret123"
	record.Values["fSession::details"] = map[string]any{
		"address":    "123 St",
		"ssn_number": "999-99-9999",
	}
	if err := store.Save(ctx, "pii", record); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "pii")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Values["fSession::username"] != "jdoe" {
		t.Error("username shouldn't be masked")
	}
	if loaded.Values["fSession::user_password"] != middleware.RedactedValue {
		t.Errorf("password should be masked, got: %v", loaded.Values["fSession::user_password"])
	}
	details := loaded.Values["fSession::details"].(map[string]any)
	if details["ssn_number"] != middleware.RedactedValue {
		t.Errorf("nested ssn should be masked, got: %v", details["ssn_number"])
	}

	// Saves are not rewritten.
	raw, err := underlying.Load(ctx, "pii")
	if err != nil {
		t.Fatal(err)
	}
	if raw.Values["fSession::user_password"] != "secret123" {
		t.Error("redaction must only apply on read")
	}
}

func TestRedactionMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewRedactionMiddleware([]string{"("}); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if err != nil {
		t.Fatal(err)
	}
	red, err := middleware.NewRedactionMiddleware([]string{"token"})
	if err != nil {
		t.Fatal(err)
	}

	// Redaction outside, so it sees decrypted values.
	store := middleware.Chain(underlying, red, enc)

	record := domain.NewRecord("c1")
	record.Values["api_token"] = "abc"
	if err := store.Save(ctx, "c1", record); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Values["api_token"] != middleware.RedactedValue {
		t.Errorf("expected masked token, got %v", loaded.Values["api_token"])
	}
}

func TestRedactor_Redact(t *testing.T) {
	r, err := middleware.NewRedactor([]string{"^secret"})
	if err != nil {
		t.Fatal(err)
	}

	record := domain.NewRecord("r1")
	record.Values["secret_key"] = "s3cr3t"
	record.Values["name"] = "ada"

	masked := r.Redact(record)
	if masked.Values["secret_key"] != middleware.RedactedValue {
		t.Errorf("expected masked secret, got %v", masked.Values["secret_key"])
	}
	if masked.Values["name"] != "ada" {
		t.Errorf("expected name untouched, got %v", masked.Values["name"])
	}
	if record.Values["secret_key"] != "s3cr3t" {
		t.Error("Redact must not modify its input")
	}
}
