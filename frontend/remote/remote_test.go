package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/w1xm/diseqc_interface/diseqc"
	"github.com/w1xm/diseqc_interface/frontend"
	"github.com/w1xm/diseqc_interface/sequencer"
)

func newTestServer(t *testing.T, sim *frontend.Simulator, password string) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(sim, password)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return s, ts
}

func TestSession(t *testing.T) {
	sim := frontend.NewSimulator()
	sim.Bidirectional = true
	sim.QueueReply(0xe4, 0x42)
	s, ts := newTestServer(t, sim, "hunter2")

	seq := sequencer.New(frontend.New(NewClient(ts.URL, "hunter2")), nil)
	seq.Sleep = func(time.Duration) {}
	res, err := seq.Run(0xe2316e, sequencer.Options{Receive: true, ReceiveTimeout: 250 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&diseqc.Reply{Data: []byte{0xe4, 0x42}}, res.Reply); diff != "" {
		t.Errorf("reply: got(-)/want(+):\n%s", diff)
	}
	if diff := cmp.Diff([]diseqc.MasterCommand{diseqc.Encode(0xe2316e)}, sim.Commands()); diff != "" {
		t.Errorf("bus: got(-)/want(+):\n%s", diff)
	}
	if sim.Voltage() != frontend.VoltageOff {
		t.Errorf("voltage left at %v", sim.Voltage())
	}

	status := s.Status()
	if status.Requests != 5 || status.Errors != 0 {
		t.Errorf("status counters %+v", status)
	}
	if status.Voltage != "OFF" || status.Tone != "OFF" {
		t.Errorf("status state %+v", status)
	}
	if status.LastCommand != "e2 31 6e 00 00 00" {
		t.Errorf("last command %q", status.LastCommand)
	}
	if status.LastReply != "e4 42 (length 2)" {
		t.Errorf("last reply %q", status.LastReply)
	}
}

func TestErrnoRoundTrip(t *testing.T) {
	sim := frontend.NewSimulator()
	_, ts := newTestServer(t, sim, "")
	fe := frontend.New(NewClient(ts.URL, ""))

	_, err := fe.RecvSlaveReply(time.Second)
	if !errors.Is(err, frontend.ErrNotSupported) {
		t.Errorf("got %v, want ErrNotSupported", err)
	}

	sim.Fail[frontend.FE_SET_TONE] = syscall.EIO
	err = fe.SetTone(frontend.ToneOff)
	if !errors.Is(err, syscall.EIO) {
		t.Errorf("got %v, want EIO", err)
	}
	if errors.Is(err, frontend.ErrNotSupported) {
		t.Errorf("EIO classified as not supported")
	}

	sim.Fail[frontend.FE_SET_VOLTAGE] = errors.New("no errno")
	if err := fe.SetVoltage(frontend.Voltage18); err == nil || !strings.Contains(err.Error(), "no errno") {
		t.Errorf("got %v, want plain error", err)
	}
}

func TestRejectedRequests(t *testing.T) {
	sim := frontend.NewSimulator()
	sim.Bidirectional = true
	s, ts := newTestServer(t, sim, "")
	for _, test := range []struct {
		name string
		body string
	}{
		{"unknown request", `{"request": 3222302546, "buffer": "AQ=="}`},
		{"short reply record", fmt.Sprintf(`{"request": %d, "buffer": "AA=="}`, frontend.FE_DISEQC_RECV_SLAVE_REPLY)},
		{"long command record", fmt.Sprintf(`{"request": %d, "buffer": "4DFgAAAAAwA="}`, frontend.FE_DISEQC_SEND_MASTER_CMD)},
		{"reply by value", fmt.Sprintf(`{"request": %d, "value": 1}`, frontend.FE_DISEQC_RECV_SLAVE_REPLY)},
		{"tone by buffer", fmt.Sprintf(`{"request": %d, "buffer": "AQ=="}`, frontend.FE_SET_TONE)},
	} {
		t.Run(test.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/ioctl", "application/json", strings.NewReader(test.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			var got Response
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if syscall.Errno(got.Errno) != syscall.EINVAL {
				t.Errorf("got %+v, want EINVAL", got)
			}
		})
	}
	if len(sim.Calls()) != 0 {
		t.Errorf("device touched: %v", sim.Calls())
	}
	if st := s.Status(); st.Errors != 5 {
		t.Errorf("status errors %d, want 5", st.Errors)
	}
}

func TestClientTimeout(t *testing.T) {
	c := NewClient("http://localhost:8502", "")
	if got := c.timeout(Request{Request: frontend.FE_SET_TONE}); got != requestTimeout {
		t.Errorf("tone timeout %v, want %v", got, requestTimeout)
	}
	buf, _ := diseqc.SlaveReply{Timeout: 45000}.MarshalBinary()
	if got, want := c.timeout(Request{Request: frontend.FE_DISEQC_RECV_SLAVE_REPLY, Buffer: buf}), requestTimeout+45*time.Second; got != want {
		t.Errorf("receive timeout %v, want %v", got, want)
	}
}

func TestWrongPassword(t *testing.T) {
	sim := frontend.NewSimulator()
	_, ts := newTestServer(t, sim, "hunter2")
	err := NewClient(ts.URL, "wrong").IoctlValue(frontend.FE_SET_TONE, int(frontend.ToneOff))
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("got %v, want 401", err)
	}
	if len(sim.Calls()) != 0 {
		t.Errorf("device touched: %v", sim.Calls())
	}
}

func TestStatusHandler(t *testing.T) {
	_, ts := newTestServer(t, frontend.NewSimulator(), "")
	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status %s", resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type %q", ct)
	}
}

func TestStatusSocket(t *testing.T) {
	sim := frontend.NewSimulator()
	_, ts := newTestServer(t, sim, "")
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	var initial Status
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatal(err)
	}
	if initial.Requests != 0 || initial.Voltage != "unknown" {
		t.Errorf("initial status %+v", initial)
	}

	if err := NewClient(ts.URL, "").IoctlValue(frontend.FE_SET_VOLTAGE, int(frontend.Voltage18)); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var next Status
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatal(err)
	}
	if next.Requests != 1 || next.Voltage != "18V" || next.LastRequest != "FE_SET_VOLTAGE" {
		t.Errorf("status after request %+v", next)
	}
}
