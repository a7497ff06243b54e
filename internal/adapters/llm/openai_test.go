package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClient_Advise(t *testing.T) {
	Convey("Given a chat client against a fake completions API", t, func() {
		var got ChatRequest
		var auth string
		status := http.StatusOK
		reply := `{"id":"c1","choices":[{"index":0,"message":{"role":"assistant","content":"Solve two graph problems a day."}}]}`

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/chat/completions" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
		defer server.Close()

		client := NewClient(&Config{
			BaseURL:        server.URL + "/v1/",
			APIKey:         "sk-test",
			Model:          "gpt-test",
			MaxTokens:      120,
			RequestTimeout: time.Second,
		})

		Convey("When asking for advice", func() {
			text, err := client.Advise(context.Background(), "be brief", "help alice")

			Convey("Then the first choice should be returned", func() {
				So(err, ShouldBeNil)
				So(text, ShouldEqual, "Solve two graph problems a day.")
			})

			Convey("Then the request should carry model, limits and messages", func() {
				So(auth, ShouldEqual, "Bearer sk-test")
				So(got.Model, ShouldEqual, "gpt-test")
				So(got.MaxTokens, ShouldEqual, 120)
				So(got.Messages, ShouldResemble, []ChatMessage{
					{Role: "system", Content: "be brief"},
					{Role: "user", Content: "help alice"},
				})
			})
		})

		Convey("When the API rejects the key", func() {
			status = http.StatusUnauthorized
			reply = `{"error":{"message":"bad key"}}`
			_, err := client.Advise(context.Background(), "s", "p")

			Convey("Then the status and body should be reported", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "status 401")
				So(err.Error(), ShouldContainSubstring, "bad key")
			})
		})

		Convey("When the API returns no choices", func() {
			reply = `{"id":"c2","choices":[]}`
			_, err := client.Advise(context.Background(), "s", "p")
			So(errors.Is(err, ErrNoChoices), ShouldBeTrue)
		})
	})

	Convey("Given a client built with nil config", t, func() {
		client := NewClient(nil)

		Convey("Then defaults should be applied", func() {
			So(client.config.Model, ShouldEqual, "gpt-3.5-turbo")
			So(client.config.MaxTokens, ShouldEqual, 300)
			So(client.httpClient.Timeout, ShouldEqual, 30*time.Second)
		})
	})
}
