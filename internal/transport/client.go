package transport

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeBufferLen = 256
	callTimeout    = 10 * time.Second
)

// EventHandler receives every incoming group-message event. Handlers run on
// their own goroutine and may call back into the client.
type EventHandler func(Event)

// MemberInfo is the user-directory record for one group member.
type MemberInfo struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"nickname"`
	Card     string `json:"card"`
}

// DisplayName prefers the group card over the account nickname.
func (m *MemberInfo) DisplayName() string {
	if m.Card != "" {
		return m.Card
	}
	if m.Nickname != "" {
		return m.Nickname
	}
	return strconv.FormatInt(m.UserID, 10)
}

type apiRequest struct {
	Action string      `json:"action"`
	Params interface{} `json:"params"`
	Echo   string      `json:"echo"`
}

type apiResponse struct {
	Status  string          `json:"status"`
	RetCode int             `json:"retcode"`
	Data    json.RawMessage `json:"data"`
	Echo    string          `json:"echo"`
}

// Client is a forward-websocket chat transport client. Outgoing messages are
// fire-and-forget; API calls are correlated with their response by echo id.
type Client struct {
	url         string
	accessToken string

	conn    *websocket.Conn
	send    chan []byte
	handler EventHandler

	mu      sync.Mutex
	pending map[string]chan apiResponse

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient builds an unconnected client for the given websocket endpoint.
func NewClient(url, accessToken string) *Client {
	return &Client{
		url:         url,
		accessToken: accessToken,
		send:        make(chan []byte, writeBufferLen),
		pending:     make(map[string]chan apiResponse),
		done:        make(chan struct{}),
	}
}

// OnEvent registers the handler for incoming group messages. Must be called
// before Connect.
func (c *Client) OnEvent(handler EventHandler) {
	c.handler = handler
}

// Connect dials the endpoint and starts the read loop and write pump.
func (c *Client) Connect() error {
	header := http.Header{}
	if c.accessToken != "" {
		header.Set("Authorization", "Bearer "+c.accessToken)
	}

	conn, _, err := websocket.DefaultDialer.Dial(c.url, header)
	if err != nil {
		return fmt.Errorf("failed to connect to chat endpoint: %w", err)
	}
	c.conn = conn

	go c.readLoop()
	go c.writePump()

	log.Printf("Chat transport connected to %s", c.url)
	return nil
}

// Close tears the connection down. Pending calls fail with a closed error.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

func (c *Client) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				log.Printf("Chat transport read error: %v", err)
			}
			c.Close()
			return
		}

		// API responses carry an echo, events do not.
		var resp apiResponse
		if err := json.Unmarshal(data, &resp); err == nil && resp.Echo != "" {
			c.mu.Lock()
			ch, ok := c.pending[resp.Echo]
			if ok {
				delete(c.pending, resp.Echo)
			}
			c.mu.Unlock()
			if ok {
				ch <- resp
			}
			continue
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("Chat transport: dropping malformed event: %v", err)
			continue
		}

		if event.IsGroupMessage() && c.handler != nil {
			go c.handler(event)
		}
	}
}

func (c *Client) writePump() {
	for {
		select {
		case data := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Chat transport write error: %v", err)
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Call performs an API action and waits for its response.
func (c *Client) Call(action string, params interface{}) (json.RawMessage, error) {
	echo := uuid.New().String()
	data, err := json.Marshal(apiRequest{Action: action, Params: params, Echo: echo})
	if err != nil {
		return nil, err
	}

	ch := make(chan apiResponse, 1)
	c.mu.Lock()
	c.pending[echo] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, echo)
		c.mu.Unlock()
	}()

	select {
	case c.send <- data:
	case <-c.done:
		return nil, fmt.Errorf("chat transport closed")
	}

	select {
	case resp := <-ch:
		if resp.Status == "failed" {
			return nil, fmt.Errorf("action %s failed with retcode %d", action, resp.RetCode)
		}
		return resp.Data, nil
	case <-time.After(callTimeout):
		return nil, fmt.Errorf("action %s timed out", action)
	case <-c.done:
		return nil, fmt.Errorf("chat transport closed")
	}
}

// SendGroupMessage delivers a message to a group. Delivery is
// fire-and-forget: failures are logged, never surfaced to the caller.
func (c *Client) SendGroupMessage(groupID string, segments ...Segment) {
	gid, err := strconv.ParseInt(groupID, 10, 64)
	if err != nil {
		log.Printf("SendGroupMessage: invalid group id %q: %v", groupID, err)
		return
	}

	params := map[string]interface{}{
		"group_id": gid,
		"message":  segments,
	}
	data, err := json.Marshal(apiRequest{Action: "send_group_msg", Params: params})
	if err != nil {
		log.Printf("SendGroupMessage: marshal failed: %v", err)
		return
	}

	select {
	case c.send <- data:
	case <-c.done:
		log.Printf("SendGroupMessage: transport closed, message to group %s dropped", groupID)
	}
}

// GetGroupMemberInfo looks up one member of a group in the user directory.
func (c *Client) GetGroupMemberInfo(groupID, userID string) (*MemberInfo, error) {
	gid, err := strconv.ParseInt(groupID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid group id %q: %w", groupID, err)
	}
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	data, err := c.Call("get_group_member_info", map[string]interface{}{
		"group_id": gid,
		"user_id":  uid,
		"no_cache": false,
	})
	if err != nil {
		return nil, err
	}

	var info MemberInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to decode member info: %w", err)
	}
	return &info, nil
}
