package remote

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/w1xm/diseqc_interface/diseqc"
	"github.com/w1xm/diseqc_interface/frontend"
)

// Status is the server's view of the frontend, streamed to watchers.
type Status struct {
	Time        time.Time `json:"time"`
	Tone        string    `json:"tone"`
	Voltage     string    `json:"voltage"`
	Requests    uint64    `json:"requests"`
	Errors      uint64    `json:"errors"`
	LastRequest string    `json:"last_request"`
	LastError   string    `json:"last_error,omitempty"`
	LastCommand string    `json:"last_command,omitempty"`
	LastReply   string    `json:"last_reply,omitempty"`
}

// Server executes requests from Clients on a local device, one at a time.
type Server struct {
	mu       sync.Mutex
	dev      frontend.Device
	password string

	statusMu   sync.Mutex
	statusCond *sync.Cond
	status     Status
	closed     bool
}

func NewServer(dev frontend.Device, password string) *Server {
	s := &Server{
		dev:      dev,
		password: password,
		status: Status{
			Tone:    "unknown",
			Voltage: "unknown",
		},
	}
	s.statusCond = sync.NewCond(&s.statusMu)
	return s
}

// Handler routes the server's API.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/api/ioctl", http.HandlerFunc(s.IoctlHandler)).Methods(http.MethodPost)
	r.Handle("/api/status", http.HandlerFunc(s.StatusHandler)).Methods(http.MethodGet)
	r.Handle("/api/ws", http.HandlerFunc(s.StatusSocketHandler))
	return r
}

// Close wakes and disconnects all status watchers.
func (s *Server) Close() {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.closed = true
	s.statusCond.Broadcast()
}

func (s *Server) authorized(r *http.Request) bool {
	if s.password == "" {
		return true
	}
	_, pass, ok := r.BasicAuth()
	return ok && subtle.ConstantTimeCompare([]byte(pass), []byte(s.password)) == 1
}

func (s *Server) IoctlHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "wrong password", http.StatusUnauthorized)
		return
	}
	err := func() error {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return err
		}
		var req Request
		if err := json.Unmarshal(body, &req); err != nil {
			return err
		}
		resp := s.execute(req)
		data, err := json.Marshal(&resp)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/json")
		_, err = w.Write(data)
		return err
	}()
	if err != nil {
		log.Printf("IoctlHandler: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
}

// checkRequest admits only the SEC requests a session issues, each with
// the argument form and record size the driver expects.
func checkRequest(req Request) error {
	switch req.Request {
	case frontend.FE_SET_TONE, frontend.FE_SET_VOLTAGE:
		if req.Buffer != nil {
			return syscall.EINVAL
		}
		return nil
	case frontend.FE_DISEQC_SEND_MASTER_CMD, frontend.FE_DISEQC_RECV_SLAVE_REPLY:
		return frontend.CheckBuffer(req.Request, req.Buffer)
	}
	return syscall.EINVAL
}

func (s *Server) execute(req Request) Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := checkRequest(req)
	if err == nil {
		if req.Buffer != nil {
			err = s.dev.IoctlBuffer(req.Request, req.Buffer)
		} else {
			err = s.dev.IoctlValue(req.Request, req.Value)
		}
	}
	s.updateStatus(req, err)

	if err != nil {
		var errno syscall.Errno
		if errors.As(err, &errno) {
			return Response{Errno: int(errno)}
		}
		return Response{Error: err.Error()}
	}
	return Response{Buffer: req.Buffer}
}

func (s *Server) updateStatus(req Request, err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	st := &s.status
	st.Time = time.Now()
	st.Requests++
	st.LastRequest = frontend.RequestName(req.Request)
	st.LastError = ""
	if err != nil {
		st.Errors++
		st.LastError = err.Error()
		s.statusCond.Broadcast()
		return
	}
	switch req.Request {
	case frontend.FE_SET_TONE:
		st.Tone = frontend.Tone(req.Value).String()
	case frontend.FE_SET_VOLTAGE:
		st.Voltage = frontend.Voltage(req.Value).String()
	case frontend.FE_DISEQC_SEND_MASTER_CMD:
		var mc diseqc.MasterCommand
		if mc.UnmarshalBinary(req.Buffer) == nil {
			st.LastCommand = mc.String()
		}
	case frontend.FE_DISEQC_RECV_SLAVE_REPLY:
		var sr diseqc.SlaveReply
		if sr.UnmarshalBinary(req.Buffer) == nil {
			st.LastReply = diseqc.Decode(sr).String()
		}
	}
	s.statusCond.Broadcast()
}

// Status returns a copy of the current status.
func (s *Server) Status() Status {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.status
}

func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(s.Status())
	if err != nil {
		log.Print(err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) StatusSocketHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "wrong password", http.StatusUnauthorized)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Watchers only listen; a read error means the peer went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				s.statusMu.Lock()
				s.statusCond.Broadcast()
				s.statusMu.Unlock()
				return
			}
		}
	}()

	seen := ^uint64(0)
	for {
		s.statusMu.Lock()
		for s.status.Requests == seen && !s.closed && ctx.Err() == nil {
			s.statusCond.Wait()
		}
		status, closed := s.status, s.closed
		s.statusMu.Unlock()
		if closed || ctx.Err() != nil {
			return
		}
		seen = status.Requests
		if err := conn.WriteJSON(status); err != nil {
			log.Print(err)
			return
		}
	}
}
