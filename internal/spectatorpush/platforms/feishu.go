package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

type feishuText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

type feishuHeader struct {
	Title    feishuText `json:"title"`
	Template string     `json:"template"`
}

type feishuElement struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

type feishuCard struct {
	Header   feishuHeader    `json:"header"`
	Elements []feishuElement `json:"elements"`
}

type feishuPayload struct {
	MsgType string     `json:"msg_type"`
	Card    feishuCard `json:"card"`
}

// FeishuAdapter posts interactive cards to a Feishu bot webhook. The secret
// is either a bare signature or "sig:<signature>;bearer:<token>", the token
// being needed to edit panel cards through the IM API.
type FeishuAdapter struct {
	client *HTTPClient
	panels panelMessages
}

func NewFeishuAdapter(client *HTTPClient) *FeishuAdapter {
	return &FeishuAdapter{client: client, panels: newPanelMessages()}
}

func (a *FeishuAdapter) Name() string {
	return "feishu"
}

func (a *FeishuAdapter) Send(ctx context.Context, endpoint, secret string, msg Message) error {
	signature, bearer := parseFeishuSecret(secret)
	payload := feishuPayloadFor(msg)
	headers := map[string]string{}
	if signature != "" {
		headers["X-Lark-Signature"] = signature
	}
	if strings.TrimSpace(msg.PanelKey) == "" {
		_, err := a.client.Do(ctx, http.MethodPost, endpoint, headers, payload)
		return err
	}
	return a.panels.upsert(ctx, endpoint, msg.PanelKey, panelOps{
		create: func(ctx context.Context) (string, error) {
			reply, err := a.client.Do(ctx, http.MethodPost, endpoint, headers, payload)
			if err != nil {
				return "", err
			}
			return feishuMessageID(reply)
		},
		edit: func(ctx context.Context, msgID string) error {
			editURL, ok := feishuMessageURL(endpoint, msgID)
			if !ok || bearer == "" {
				return errNotEditable
			}
			_, err := a.client.Do(ctx, http.MethodPatch, editURL, map[string]string{"Authorization": "Bearer " + bearer}, payload)
			return err
		},
	})
}

func (a *FeishuAdapter) ForgetPanel(endpoint, panelKey string) {
	a.panels.forget(endpoint, panelKey)
}

func feishuPayloadFor(msg Message) feishuPayload {
	template := "blue"
	if msg.Alert {
		template = "red"
	}
	summary := msg.Description
	if summary == "" {
		summary = msg.Content
	}
	elements := make([]feishuElement, 0, len(msg.Fields)+1)
	elements = append(elements, feishuElement{Tag: "markdown", Text: summary})
	for _, f := range msg.Fields {
		elements = append(elements, feishuElement{Tag: "markdown", Text: "**" + f.Name + "**: " + f.Value})
	}
	return feishuPayload{
		MsgType: "interactive",
		Card: feishuCard{
			Header:   feishuHeader{Title: feishuText{Tag: "plain_text", Content: msg.Title}, Template: template},
			Elements: elements,
		},
	}
}

func parseFeishuSecret(secret string) (signature string, bearer string) {
	s := strings.TrimSpace(secret)
	if s == "" {
		return "", ""
	}
	if !strings.Contains(s, ":") {
		return s, ""
	}
	for _, part := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "sig":
			signature = strings.TrimSpace(v)
		case "bearer":
			bearer = strings.TrimSpace(v)
		}
	}
	return signature, bearer
}

func feishuMessageURL(endpoint, msgID string) (string, bool) {
	if strings.TrimSpace(msgID) == "" {
		return "", false
	}
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || u.Host == "" {
		return "", false
	}
	u.Path = "/open-apis/im/v1/messages/" + msgID
	u.RawQuery = ""
	return u.String(), true
}

// feishuMessageID reads the id of a created message. Bot webhooks and the
// IM API put it in different places.
func feishuMessageID(reply []byte) (string, error) {
	var r struct {
		MessageID string `json:"message_id"`
		ID        string `json:"id"`
		Data      struct {
			MessageID string `json:"message_id"`
			ID        string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(reply, &r); err != nil {
		return "", err
	}
	for _, id := range []string{r.MessageID, r.ID, r.Data.MessageID, r.Data.ID} {
		if id = strings.TrimSpace(id); id != "" {
			return id, nil
		}
	}
	return "", errors.New("feishu reply carries no message id")
}
