// Package contenttest provides an in-memory content service that speaks the
// same resource API as the load target. Responses can be scripted per method
// and path to reproduce conflicts, failures and malformed bodies.
package contenttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// Response is a scripted reply. With Passthrough set the request is served
// normally after Delay.
type Response struct {
	Status      int
	Body        string
	Delay       time.Duration
	Passthrough bool
}

// Call records one request seen by the service.
type Call struct {
	Method string
	Path   string
	Status int
}

type resource struct {
	id       string
	typ      string
	title    string
	children []string
}

// Service is an http.Handler holding a content tree rooted at a database
// path such as "/db".
type Service struct {
	mu       sync.Mutex
	database string
	username string
	password string
	latency  time.Duration
	nodes    map[string]*resource
	scripts  map[string][]Response
	calls    []Call
	seq      int
}

// Option configures a Service.
type Option func(*Service)

// WithDatabase sets the path that containers are created under.
func WithDatabase(path string) Option {
	return func(s *Service) {
		s.database = "/" + strings.Trim(path, "/")
	}
}

// WithBasicAuth requires every request to carry the given credentials.
func WithBasicAuth(username, password string) Option {
	return func(s *Service) {
		s.username = username
		s.password = password
	}
}

// WithLatency delays every response.
func WithLatency(d time.Duration) Option {
	return func(s *Service) {
		s.latency = d
	}
}

// NewService returns an empty service with the database at "/db".
func NewService(opts ...Option) *Service {
	s := &Service{
		database: "/db",
		nodes:    make(map[string]*resource),
		scripts:  make(map[string][]Response),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Server couples a Service with a running httptest server.
type Server struct {
	*Service
	srv *httptest.Server
}

// NewServer starts a Service on a loopback listener and closes it when the
// test finishes.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()
	svc := NewService(opts...)
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)
	return &Server{Service: svc, srv: srv}
}

// URL returns the absolute URL of path on the server.
func (s *Server) URL(path string) string {
	return s.srv.URL + "/" + strings.TrimLeft(path, "/")
}

// DatabaseURL returns the URL containers are created under.
func (s *Server) DatabaseURL() string {
	return s.URL(s.database)
}

// Close stops the server.
func (s *Server) Close() {
	s.srv.Close()
}

// AddContainer creates a container directly under the database.
func (s *Service) AddContainer(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.database + "/" + id
	s.nodes[path] = &resource{id: id, typ: "Container", title: "Container"}
	return path
}

// AddFolders creates n folders under parent and returns their paths.
func (s *Service) AddFolders(parent string, n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent = cleanPath(parent)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path, ok := s.insertLocked(parent, "", "Folder", "Folder")
		if ok {
			out = append(out, path)
		}
	}
	return out
}

// Script queues responses for method and path. Queued replies are consumed
// in order before the service falls back to normal behavior.
func (s *Service) Script(method, path string, responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scriptKey(method, cleanPath(path))
	s.scripts[key] = append(s.scripts[key], responses...)
}

// Conflicts queues n conflict replies for updates of path.
func (s *Service) Conflicts(path string, n int) {
	responses := make([]Response, n)
	for i := range responses {
		responses[i] = Response{Status: http.StatusConflict, Body: `{"reason":"conflict"}`}
	}
	s.Script(http.MethodPatch, path, responses...)
}

// Exists reports whether path holds a resource.
func (s *Service) Exists(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[cleanPath(path)]
	return ok
}

// Title returns the current title of path.
func (s *Service) Title(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[cleanPath(path)]; ok {
		return n.title
	}
	return ""
}

// Children returns the child paths of path in creation order.
func (s *Service) Children(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[cleanPath(path)]
	if !ok {
		return nil
	}
	return append([]string(nil), n.children...)
}

// Size returns the number of resources below the database.
func (s *Service) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// Calls returns every request seen so far.
func (s *Service) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Count returns how many requests matched method and status. A zero status
// matches any status.
func (s *Service) Count(method string, status int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, c := range s.calls {
		if c.Method == method && (status == 0 || c.Status == status) {
			total++
		}
	}
	return total
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.username != "" {
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.username || pass != s.password {
			s.write(w, r, http.StatusUnauthorized, map[string]string{"reason": "unauthorized"})
			return
		}
	}
	path := cleanPath(r.URL.Path)

	s.mu.Lock()
	reply, scripted := s.nextScriptLocked(r.Method, path)
	s.mu.Unlock()

	delay := s.latency
	if scripted {
		delay += reply.Delay
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if scripted && !reply.Passthrough {
		s.record(r.Method, path, reply.Status)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(reply.Status)
		_, _ = w.Write([]byte(reply.Body))
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGet(w, r, path)
	case http.MethodPost:
		s.handlePost(w, r, path)
	case http.MethodPatch:
		s.handlePatch(w, r, path)
	case http.MethodDelete:
		s.handleDelete(w, r, path)
	default:
		s.write(w, r, http.StatusMethodNotAllowed, map[string]string{"reason": "method not allowed"})
	}
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request, path string) {
	s.mu.Lock()
	n, ok := s.nodes[path]
	if !ok {
		s.mu.Unlock()
		s.write(w, r, http.StatusNotFound, map[string]string{"reason": "notFound"})
		return
	}
	base := "http://" + r.Host
	items := make([]map[string]string, 0, len(n.children))
	for _, child := range n.children {
		c := s.nodes[child]
		items = append(items, map[string]string{
			"@id":   base + child,
			"@type": c.typ,
			"id":    c.id,
			"title": c.title,
		})
	}
	doc := map[string]interface{}{
		"@id":    base + path,
		"@type":  n.typ,
		"id":     n.id,
		"title":  n.title,
		"length": len(n.children),
		"items":  items,
	}
	s.mu.Unlock()
	s.write(w, r, http.StatusOK, doc)
}

func (s *Service) handlePost(w http.ResponseWriter, r *http.Request, path string) {
	var payload struct {
		ID    string `json:"id"`
		Type  string `json:"@type"`
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Type == "" {
		s.write(w, r, http.StatusPreconditionFailed, map[string]string{"reason": "invalid payload"})
		return
	}

	s.mu.Lock()
	if path != s.database {
		if _, ok := s.nodes[path]; !ok {
			s.mu.Unlock()
			s.write(w, r, http.StatusNotFound, map[string]string{"reason": "notFound"})
			return
		}
	}
	created, ok := s.insertLocked(path, payload.ID, payload.Type, payload.Title)
	s.mu.Unlock()
	if !ok {
		s.write(w, r, http.StatusConflict, map[string]string{"reason": "alreadyExists"})
		return
	}
	id := created[strings.LastIndex(created, "/")+1:]
	s.write(w, r, http.StatusCreated, map[string]string{
		"@id":   "http://" + r.Host + created,
		"@type": payload.Type,
		"id":    id,
	})
}

func (s *Service) handlePatch(w http.ResponseWriter, r *http.Request, path string) {
	var payload struct {
		Title *string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.write(w, r, http.StatusPreconditionFailed, map[string]string{"reason": "invalid payload"})
		return
	}
	s.mu.Lock()
	n, ok := s.nodes[path]
	if ok && payload.Title != nil {
		n.title = *payload.Title
	}
	s.mu.Unlock()
	if !ok {
		s.write(w, r, http.StatusNotFound, map[string]string{"reason": "notFound"})
		return
	}
	s.record(r.Method, path, http.StatusNoContent)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request, path string) {
	s.mu.Lock()
	_, ok := s.nodes[path]
	if ok {
		for key := range s.nodes {
			if key == path || strings.HasPrefix(key, path+"/") {
				delete(s.nodes, key)
			}
		}
		parent := path[:strings.LastIndex(path, "/")]
		if p, found := s.nodes[parent]; found {
			p.children = removeString(p.children, path)
		}
	}
	s.mu.Unlock()
	if !ok {
		s.write(w, r, http.StatusNotFound, map[string]string{"reason": "notFound"})
		return
	}
	s.write(w, r, http.StatusOK, map[string]string{})
}

// insertLocked adds a child under parent. The caller holds s.mu.
func (s *Service) insertLocked(parent, id, typ, title string) (string, bool) {
	if id == "" {
		s.seq++
		id = fmt.Sprintf("%s-%d", strings.ToLower(typ), s.seq)
	}
	path := parent + "/" + id
	if _, exists := s.nodes[path]; exists {
		return "", false
	}
	s.nodes[path] = &resource{id: id, typ: typ, title: title}
	if p, ok := s.nodes[parent]; ok {
		p.children = append(p.children, path)
	}
	return path, true
}

func (s *Service) nextScriptLocked(method, path string) (Response, bool) {
	key := scriptKey(method, path)
	queue := s.scripts[key]
	if len(queue) == 0 {
		return Response{}, false
	}
	reply := queue[0]
	if len(queue) == 1 {
		delete(s.scripts, key)
	} else {
		s.scripts[key] = queue[1:]
	}
	return reply, true
}

func (s *Service) write(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	s.record(r.Method, cleanPath(r.URL.Path), status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Service) record(method, path string, status int) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: method, Path: path, Status: status})
	s.mu.Unlock()
}

func scriptKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// cleanPath accepts either a path or an absolute URL.
func cleanPath(path string) string {
	if i := strings.Index(path, "://"); i >= 0 {
		rest := path[i+3:]
		j := strings.Index(rest, "/")
		if j < 0 {
			return "/"
		}
		path = rest[j:]
	}
	return "/" + strings.Trim(path, "/")
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
