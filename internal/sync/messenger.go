package sync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shopassist/internal/logger"
)

// KeySource provides the operator-configured API key. The key is attached
// server-side to every outbound payload and never accepted from the client.
type KeySource interface {
	APIKey() string
}

// StreamSink consumes relayed SSE bytes. Flush must push buffered bytes to
// the client so tokens arrive as they are produced. gin's ResponseWriter
// satisfies it directly.
type StreamSink interface {
	Write(p []byte) (int, error)
	Flush()
}

// Messenger owns all traffic to the assistant API: key injection, response
// classification, redacted logging, and the SSE relay.
type Messenger struct {
	baseURL    string
	storeURL   string
	keys       KeySource
	httpClient *http.Client
	logger     *logger.Logger
}

func NewMessenger(baseURL, storeURL string, keys KeySource, log *logger.Logger) *Messenger {
	return &Messenger{
		baseURL:  baseURL,
		storeURL: storeURL,
		keys:     keys,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: log,
	}
}

func (m *Messenger) StoreURL() string {
	return m.storeURL
}

// Send posts a JSON payload to the assistant API and classifies the response.
// Any 2xx with a valid JSON object body is returned verbatim.
func (m *Messenger) Send(endpoint string, payload map[string]interface{}) (map[string]interface{}, error) {
	body := m.withKey(payload)

	m.logger.Debug("Sending request to assistant API: %s %+v", endpoint, logger.Redact(body))

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest("POST", m.baseURL+endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.logger.Error("assistant API request failed: %v", err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var decoded map[string]interface{}
		// A literal null body decodes into a nil map without error, so check
		// for it explicitly: only a JSON object counts as a valid response.
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil || decoded == nil {
			return nil, ErrInvalidResponse
		}
		return decoded, nil
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusForbidden:
		return nil, ErrForbidden
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
}

// Stream posts a payload with an event-stream accept header and relays the
// response bytes to the sink verbatim, flushing per chunk. A transport
// failure mid-stream emits exactly one terminal SSE error frame.
func (m *Messenger) Stream(endpoint string, payload map[string]interface{}, sink StreamSink) {
	body := m.withKey(payload)

	m.logger.Debug("Starting stream to assistant API: %s", endpoint)

	jsonData, err := json.Marshal(body)
	if err != nil {
		writeSSEError(sink, fmt.Sprintf("Connection error: %v", err))
		return
	}

	req, err := http.NewRequest("POST", m.baseURL+endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		writeSSEError(sink, fmt.Sprintf("Connection error: %v", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.logger.Error("streaming request failed: %v", err)
		writeSSEError(sink, fmt.Sprintf("Connection error: %v", err))
		return
	}
	defer resp.Body.Close()

	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := sink.Write(buf[:n]); werr != nil {
				// Client went away; stop reading upstream.
				m.logger.Debug("stream client disconnected: %v", werr)
				return
			}
			sink.Flush()
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			m.logger.Error("streaming read failed: %v", err)
			writeSSEError(sink, fmt.Sprintf("Connection error: %v", err))
			return
		}
	}
}

// CheckKey reports whether a non-empty API key is configured.
func (m *Messenger) CheckKey() bool {
	return m.keys.APIKey() != ""
}

// ValidateConnection checks the key against the /store/validate endpoint.
// A missing key short-circuits without a network call.
func (m *Messenger) ValidateConnection() (bool, string) {
	if !m.CheckKey() {
		return false, ErrMissingKey.Error()
	}

	resp, err := m.Send("/store/validate", map[string]interface{}{
		"store_url": m.storeURL,
	})
	if err != nil {
		return false, err.Error()
	}
	if resp == nil {
		return false, "No response from API"
	}

	success, _ := resp["success"].(bool)
	message := "Unknown error"
	if msg, ok := resp["error"].(string); ok && msg != "" {
		message = msg
	}
	return success, message
}

func (m *Messenger) withKey(payload map[string]interface{}) map[string]interface{} {
	body := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["api_key"] = m.keys.APIKey()
	return body
}

// WriteSSEError emits a single data frame carrying a structured error object.
func WriteSSEError(sink StreamSink, message string) {
	writeSSEError(sink, message)
}

func writeSSEError(sink StreamSink, message string) {
	frame, _ := json.Marshal(map[string]string{"error": message})
	fmt.Fprintf(sink, "data: %s\n\n", frame)
	sink.Flush()
}
