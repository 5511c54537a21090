package main

import (
	"time"

	"github.com/gorilla/websocket"
)

// watch counts the messages pushed on the a/b conversation until expected arrive or
// the socket stays quiet for 10 seconds. It signals ready once connected.
func watch(a, b, self string, expected int, ready chan<- struct{}, st *stats) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL("/chats/"+a+"/"+b+"/ws"), nil)
	ready <- struct{}{}
	if err != nil {
		log.Error("websocket connect failed", "user", self, "error", err)
		st.failed.Add(1)
		return
	}
	defer conn.Close()

	got := 0
	for got < expected {
		conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Warn("websocket read stopped", "user", self, "received", got, "error", err)
			break
		}
		got++
		st.received.Add(1)
	}
	log.Info("watcher finished", "user", self, "received", got)
}
