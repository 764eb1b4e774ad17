package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeJoinGame       = 101
	MsgTypeUpdateLocation = 201
	MsgTypeRequestKill    = 202
	MsgTypeRespondToKill  = 203
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	gameID := flag.Uint("game", 1, "game id")
	playerID := flag.Uint("player", 1, "player id")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	log.Println("Joining game...")
	joinData, _ := json.Marshal(map[string]uint{"game_id": *gameID, "player_id": *playerID})
	if err := send(c, MsgTypeJoinGame, joinData); err != nil {
		log.Println("Write error:", err)
		return
	}

	log.Println("Commands: 'loc <lat> <lng>', 'kill', 'accept <hunterId>', 'deny <hunterId>'")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			switch fields[0] {
			case "loc":
				if len(fields) != 3 {
					log.Println("usage: loc <lat> <lng>")
					continue
				}
				lat, _ := strconv.ParseFloat(fields[1], 64)
				lng, _ := strconv.ParseFloat(fields[2], 64)
				data, _ := json.Marshal(map[string]float64{"latitude": lat, "longitude": lng})
				if err := send(c, MsgTypeUpdateLocation, data); err != nil {
					log.Println("Write error:", err)
					return
				}
			case "kill":
				if err := send(c, MsgTypeRequestKill, []byte(`{}`)); err != nil {
					log.Println("Write error:", err)
					return
				}
			case "accept", "deny":
				if len(fields) != 2 {
					log.Println("usage: accept|deny <hunterId>")
					continue
				}
				hunter, _ := strconv.ParseUint(fields[1], 10, 32)
				data, _ := json.Marshal(map[string]interface{}{
					"hunter_id": hunter,
					"accepted":  fields[0] == "accept",
				})
				if err := send(c, MsgTypeRespondToKill, data); err != nil {
					log.Println("Write error:", err)
					return
				}
			}
		}
	}
}
