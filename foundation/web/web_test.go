package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/foundation/web"
)

const (
	success = "✓"
	failed  = "✗"
)

func Test_Handle(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}

	var order []string
	mw := func(name string) web.Middleware {
		return func(handler web.Handler) web.Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				order = append(order, name)
				return handler(ctx, w, r)
			}
		}
	}

	shutdown := make(chan os.Signal, 1)
	app := web.NewApp(shutdown, mw("app"))

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		v, err := web.GetValues(ctx)
		if err != nil {
			return err
		}
		if v.TraceID == "" {
			return errors.New("missing trace id")
		}

		var it item
		if err := web.Decode(r, &it); err != nil {
			return err
		}

		it.Name = it.Name + ":" + web.Param(r, "id")
		return web.Respond(ctx, w, it, http.StatusCreated)
	}
	app.Handle(http.MethodPost, "v1", "/items/:id", h, mw("route"))

	down := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.NewShutdownError("integrity issue")
	}
	app.Handle(http.MethodGet, "v1", "/down", down)

	t.Log("Given the need to route requests through the web framework.")
	{
		t.Logf("\tTest 0:\tWhen handling a request with a route parameter.")
		{
			r := httptest.NewRequest(http.MethodPost, "/v1/items/42", strings.NewReader(`{"name":"bill"}`))
			w := httptest.NewRecorder()
			app.ServeHTTP(w, r)

			if w.Code != http.StatusCreated {
				t.Fatalf("\t%s\tTest 0:\tShould receive a 201 status code, got %d: %s", failed, w.Code, w.Body.String())
			}
			t.Logf("\t%s\tTest 0:\tShould receive a 201 status code.", success)

			var got item
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to decode the response: %v", failed, err)
			}
			if got.Name != "bill:42" {
				t.Fatalf("\t%s\tTest 0:\tShould get the param back, got %q", failed, got.Name)
			}
			t.Logf("\t%s\tTest 0:\tShould get the param back.", success)

			if len(order) != 2 || order[0] != "app" || order[1] != "route" {
				t.Fatalf("\t%s\tTest 0:\tShould run app middleware before route middleware: %v", failed, order)
			}
			t.Logf("\t%s\tTest 0:\tShould run app middleware before route middleware.", success)
		}

		t.Logf("\tTest 1:\tWhen a handler returns a shutdown error.")
		{
			r := httptest.NewRequest(http.MethodGet, "/v1/down", nil)
			w := httptest.NewRecorder()
			app.ServeHTTP(w, r)

			select {
			case <-shutdown:
				t.Logf("\t%s\tTest 1:\tShould signal a shutdown.", success)
			default:
				t.Fatalf("\t%s\tTest 1:\tShould signal a shutdown.", failed)
			}
		}
	}
}

func Test_Decode(t *testing.T) {
	var v struct {
		Nodes []string `json:"nodes"`
	}

	t.Log("Given the need to decode request documents.")
	{
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nodes":["a"],"extra":1}`))
		if err := web.Decode(r, &v); err == nil {
			t.Fatalf("\t%s\tShould reject unknown fields.", failed)
		}
		t.Logf("\t%s\tShould reject unknown fields.", success)
	}
}

func Test_Shutdown(t *testing.T) {
	err := web.NewShutdownError("bad")
	wrapped := errors.Join(errors.New("context"), err)

	if !web.IsShutdown(wrapped) {
		t.Fatalf("\t%s\tShould find a wrapped shutdown error.", failed)
	}
	if web.IsShutdown(errors.New("bad")) {
		t.Fatalf("\t%s\tShould not treat a plain error as a shutdown.", failed)
	}
	t.Logf("\t%s\tShould detect shutdown errors.", success)
}
