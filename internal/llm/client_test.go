package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestClient_Complete(t *testing.T) {
	var got chatRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  - Gaste menos com delivery\n"}}]}`))
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL+"/v1/", "sk-test", "gpt-4o-mini")
	out, err := c.Complete(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "- Gaste menos com delivery" {
		t.Errorf("completion = %q", out)
	}
	if auth != "Bearer sk-test" {
		t.Errorf("authorization = %q", auth)
	}
	if got.Model != "gpt-4o-mini" || len(got.Messages) != 2 || got.Messages[1].Content != "user prompt" {
		t.Errorf("unexpected request %+v", got)
	}
}

func TestClient_Complete_Errors(t *testing.T) {
	t.Run("bad_status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		c := NewClient(server.Client(), server.URL, "", "m")
		if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
			t.Error("expected error for 429")
		}
	})

	t.Run("no_choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		c := NewClient(server.Client(), server.URL, "", "m")
		if _, err := c.Complete(context.Background(), "s", "u"); !errors.Is(err, ErrEmptyCompletion) {
			t.Errorf("expected ErrEmptyCompletion, got %v", err)
		}
	})
}

func TestLines(t *testing.T) {
	got := Lines("1. Primeiro\n\n- Segundo\n• Terceiro\n")
	want := []string{"Primeiro", "Segundo", "Terceiro"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Lines = %v, want %v", got, want)
	}
}

func TestLines_KeepsLeadingNumbers(t *testing.T) {
	got := Lines("30% do seu gasto foi em delivery")
	if len(got) != 1 || got[0] != "30% do seu gasto foi em delivery" {
		t.Errorf("Lines = %v", got)
	}
}
