// Load test: pairs of users chat through the REST API while each side watches the
// conversation over a websocket.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"
)

var (
	baseURL   = pflag.String("base-url", "http://localhost:8080", "server base URL")
	pairCount = pflag.Int("pairs", 50, "number of chatting user pairs")
	msgCount  = pflag.Int("messages", 20, "messages sent by each user")
	log       = hclog.New(&hclog.LoggerOptions{Name: "loadtest"})
)

type userResponse struct {
	ID string `json:"_id"`
}

type stats struct {
	sent     atomic.Int64
	received atomic.Int64
	failed   atomic.Int64
}

func main() {
	pflag.Parse()
	log.Info("starting", "users", *pairCount*2, "messages_each", *msgCount)

	st := &stats{}
	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *pairCount; i++ {
		wg.Add(1)
		go func(pairID int) {
			defer wg.Done()
			runPair(pairID, st)
		}(i)
	}
	wg.Wait()

	log.Info("complete",
		"elapsed", time.Since(start).Truncate(time.Millisecond),
		"sent", st.sent.Load(),
		"received", st.received.Load(),
		"failed", st.failed.Load())
}

func runPair(pairID int, st *stats) {
	a, err := createUser(fmt.Sprintf("u_%d_a", pairID))
	if err != nil {
		log.Error("create user failed", "pair", pairID, "error", err)
		st.failed.Add(1)
		return
	}
	b, err := createUser(fmt.Sprintf("u_%d_b", pairID))
	if err != nil {
		log.Error("create user failed", "pair", pairID, "error", err)
		st.failed.Add(1)
		return
	}

	// Each watcher expects every message of the pair.
	expected := 2 * *msgCount
	var wg sync.WaitGroup
	ready := make(chan struct{}, 2)
	for _, self := range []string{a, b} {
		wg.Add(1)
		go func(self string) {
			defer wg.Done()
			watch(a, b, self, expected, ready, st)
		}(self)
	}
	<-ready
	<-ready

	var senders sync.WaitGroup
	for _, from := range []string{a, b} {
		senders.Add(1)
		go func(from string) {
			defer senders.Done()
			for i := 0; i < *msgCount; i++ {
				text := fmt.Sprintf("LoadTest Msg %d from %s", i, from)
				if err := sendMessage(a, b, from, text); err != nil {
					log.Warn("send failed", "from", from, "error", err)
					st.failed.Add(1)
					continue
				}
				st.sent.Add(1)
				// Small pause so localhost is not the only bottleneck.
				time.Sleep(10 * time.Millisecond)
			}
		}(from)
	}
	senders.Wait()
	wg.Wait()
}

func createUser(name string) (string, error) {
	resp, err := postJSON("/users", map[string]string{"name": name})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var u userResponse
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return "", err
	}
	return u.ID, nil
}

func sendMessage(a, b, from, text string) error {
	resp, err := postJSON("/chats/"+a+"/"+b, map[string]string{"from": from, "text": text})
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func wsURL(path string) string {
	return "ws" + strings.TrimPrefix(*baseURL, "http") + path
}

func postJSON(endpoint string, data interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return http.Post(*baseURL+endpoint, "application/json", bytes.NewBuffer(jsonData))
}
