package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/the-lightning-land/vendd/display"
)

type tableEntry struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

type getTablesResponse struct {
	Coins       []tableEntry `json:"coins"`
	Items       []tableEntry `json:"items"`
	ReturnToken string       `json:"return_token"`
}

type getDisplayResponse struct {
	Total   string   `json:"total"`
	Console []string `json:"console"`
}

type postInteractionRequest struct {
	Token string `json:"token"`
}

type postInteractionResponse struct {
	Token string `json:"token"`
}

func (a *Api) handleGetTables() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := &getTablesResponse{
			Coins:       []tableEntry{},
			Items:       []tableEntry{},
			ReturnToken: display.ReturnToken,
		}

		for _, label := range a.tables.Coins() {
			value, _ := a.tables.LookupCoin(label)
			res.Coins = append(res.Coins, tableEntry{Label: label, Amount: value})
		}

		for _, label := range a.tables.Items() {
			price, _ := a.tables.LookupPrice(label)
			res.Items = append(res.Items, tableEntry{Label: label, Amount: price})
		}

		a.jsonResponse(w, res, http.StatusOK)
	}
}

func (a *Api) handleGetDisplay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, console := a.snapshot()

		a.jsonResponse(w, &getDisplayResponse{
			Total:   total,
			Console: console,
		}, http.StatusOK)
	}
}

func (a *Api) handlePostInteraction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := postInteractionRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			a.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}

		token := strings.TrimSpace(req.Token)
		if token == "" {
			a.jsonError(w, "token is required", http.StatusBadRequest)
			return
		}

		if token == display.CloseToken {
			a.jsonError(w, "token is reserved", http.StatusBadRequest)
			return
		}

		select {
		case a.incoming <- display.Interaction{Token: token, Payload: r.RemoteAddr}:
			a.log.Debugf("Queued %v from %v", token, r.RemoteAddr)
			a.jsonResponse(w, &postInteractionResponse{Token: token}, http.StatusAccepted)
		case <-a.closed:
			a.jsonError(w, "panel is closed", http.StatusServiceUnavailable)
		case <-r.Context().Done():
			a.log.Warnf("Request for %v cancelled before it was queued", token)
			a.jsonError(w, "request cancelled", http.StatusServiceUnavailable)
		}
	}
}

func (a *Api) handleGetDisplayEvents() http.HandlerFunc {
	upgrader := &websocket.Upgrader{}

	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			a.log.Errorf("Could not upgrade connection: %v", err)
			return
		}

		client, total, console := a.subscribe()

		// read pump
		go func() {
			defer c.Close()
			defer client.cancel()

			c.SetReadLimit(512)
			c.SetReadDeadline(time.Now().Add(60 * time.Second))
			c.SetPongHandler(func(string) error {
				c.SetReadDeadline(time.Now().Add(60 * time.Second))
				return nil
			})

			for {
				_, _, err := c.ReadMessage()
				if err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
						a.log.Errorf("unexpected websocket closure: %v", err)
					}
					break
				}
			}
		}()

		// write pump
		go func() {
			defer c.Close()

			ticker := time.NewTicker(54 * time.Second)
			defer ticker.Stop()

			initial := []*regionEvent{{Region: string(display.RegionTotal), Text: total}}
			for _, line := range console {
				initial = append(initial, &regionEvent{Region: string(display.RegionConsole), Text: line, Append: true})
			}

			for _, event := range initial {
				c.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := c.WriteJSON(event); err != nil {
					return
				}
			}

			for {
				select {
				case event, ok := <-client.events:
					c.SetWriteDeadline(time.Now().Add(10 * time.Second))

					if !ok {
						c.WriteMessage(websocket.CloseMessage, []byte{})
						return
					}

					if err := c.WriteJSON(event); err != nil {
						return
					}
				case <-ticker.C:
					c.SetWriteDeadline(time.Now().Add(10 * time.Second))
					if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()
	}
}
