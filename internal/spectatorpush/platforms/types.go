package platforms

import (
	"context"
	"errors"
	"strings"
	"sync"
)

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Message is a platform-neutral webhook message. A non-empty PanelKey asks
// the adapter to edit the message it previously posted under that key.
type Message struct {
	PanelKey    string
	Title       string
	Content     string
	Description string
	Color       int
	Alert       bool
	Timestamp   string
	Footer      string
	Fields      []Field
}

type Adapter interface {
	Name() string
	Send(ctx context.Context, endpoint, secret string, msg Message) error
}

// errNotEditable means the endpoint gives no way to address a posted message.
var errNotEditable = errors.New("panel message not editable")

// panelOps posts a fresh panel message or edits an existing one.
type panelOps struct {
	create func(ctx context.Context) (string, error)
	edit   func(ctx context.Context, msgID string) error
}

// panelMessages remembers the platform message id behind each panel.
type panelMessages struct {
	mu    sync.Mutex
	byKey map[string]string
}

func newPanelMessages() panelMessages {
	return panelMessages{byKey: map[string]string{}}
}

func panelMessageKey(endpoint, panelKey string) string {
	return strings.TrimSpace(endpoint) + "|" + strings.TrimSpace(panelKey)
}

// upsert edits the message already posted for panelKey, or posts a new one
// when there is none or the platform no longer knows it.
func (p *panelMessages) upsert(ctx context.Context, endpoint, panelKey string, ops panelOps) error {
	key := panelMessageKey(endpoint, panelKey)
	p.mu.Lock()
	msgID := p.byKey[key]
	p.mu.Unlock()

	if msgID != "" {
		err := ops.edit(ctx, msgID)
		if err == nil {
			return nil
		}
		if !isNotFound(err) && !errors.Is(err, errNotEditable) {
			return err
		}
	}
	created, err := ops.create(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.byKey[key] = created
	p.mu.Unlock()
	return nil
}

func (p *panelMessages) forget(endpoint, panelKey string) {
	key := panelMessageKey(endpoint, panelKey)
	if key == "|" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.byKey, key)
}
