package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// CORS for the browser clients is handled at the HTTP layer; the
	// socket itself accepts any origin the router let through.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve returns the iris handler that upgrades to a websocket and starts
// the client's pumps. The hub and pipeline are passed in from main — no
// package-level socket server.
func Serve(hub *Hub, pipeline *Pipeline) iris.Handler {
	return func(ctx iris.Context) {
		conn, err := upgrader.Upgrade(ctx.ResponseWriter(), ctx.Request(), nil)
		if err != nil {
			log.Printf("⚠️  ws: upgrade failed: %v", err)
			return
		}

		client := newClient(hub, pipeline, conn)
		hub.register(client)
		log.Printf("🧠 new socket connection from %s", ctx.RemoteAddr())

		go client.writePump()
		go client.readPump()
	}
}
