package web

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ReloadPath is where browsers connect for live reload.
const ReloadPath = "/_folio/livereload"

// Script connects a page to the live reload endpoint. Inject it into pages
// built for preview.
var Script = []byte(`<script>
(function() {
	var proto = location.protocol === "https:" ? "wss://" : "ws://";
	var ws = new WebSocket(proto + location.host + "` + ReloadPath + `");
	ws.onmessage = function(e) {
		if (JSON.parse(e.data).type === "RELOAD") location.reload();
	};
})();
</script>
`)

type message struct {
	Type string `json:"type"`
}

// LiveReload tells connected browsers to reload after a rebuild.
type LiveReload struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	closed   bool
}

// NewLiveReload returns an empty LiveReload hub.
func NewLiveReload() *LiveReload {
	return &LiveReload{
		upgrader: websocket.Upgrader{
			// Preview only; pages may be opened through any host name.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP upgrades the request and holds the connection until the browser
// goes away or the hub is closed.
func (l *LiveReload) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("LiveReload: %s", err)
		return
	}
	defer conn.Close()

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.clients[conn] = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.clients, conn)
		l.mu.Unlock()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("LiveReload: %s", err)
			}
			return
		}
	}
}

// Reload sends the reload message to every connected browser.
func (l *LiveReload) Reload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for conn := range l.clients {
		if err := conn.WriteJSON(message{Type: "RELOAD"}); err != nil {
			log.Printf("Reload: %s", err)
		}
	}
}

// Clients returns the number of connected browsers.
func (l *LiveReload) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Close disconnects all browsers. Hijacked connections are not closed by
// http.Server.Shutdown, so call this when shutting down.
func (l *LiveReload) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	for conn := range l.clients {
		conn.Close()
	}
}
