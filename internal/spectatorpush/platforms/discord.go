package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Footer      *discordFooter `json:"footer,omitempty"`
	Fields      []discordField `json:"fields"`
}

type discordPayload struct {
	Content string         `json:"content"`
	Embeds  []discordEmbed `json:"embeds"`
}

// DiscordAdapter posts embeds to a Discord webhook. Panels are edited in
// place through the webhook message endpoint.
type DiscordAdapter struct {
	client *HTTPClient
	panels panelMessages
}

func NewDiscordAdapter(client *HTTPClient) *DiscordAdapter {
	return &DiscordAdapter{client: client, panels: newPanelMessages()}
}

func (a *DiscordAdapter) Name() string {
	return "discord"
}

func (a *DiscordAdapter) Send(ctx context.Context, endpoint, _ string, msg Message) error {
	payload := discordPayloadFor(msg)
	if strings.TrimSpace(msg.PanelKey) == "" {
		_, err := a.client.Do(ctx, http.MethodPost, endpoint, nil, payload)
		return err
	}
	return a.panels.upsert(ctx, endpoint, msg.PanelKey, panelOps{
		create: func(ctx context.Context) (string, error) {
			reply, err := a.client.Do(ctx, http.MethodPost, withWait(endpoint), nil, payload)
			if err != nil {
				return "", err
			}
			var created struct {
				ID string `json:"id"`
			}
			if json.Unmarshal(reply, &created) != nil || strings.TrimSpace(created.ID) == "" {
				return "", errors.New("discord webhook reply carries no message id")
			}
			return created.ID, nil
		},
		edit: func(ctx context.Context, msgID string) error {
			editURL, ok := discordMessageURL(endpoint, msgID)
			if !ok {
				return errNotEditable
			}
			_, err := a.client.Do(ctx, http.MethodPatch, editURL, nil, payload)
			return err
		},
	})
}

func (a *DiscordAdapter) ForgetPanel(endpoint, panelKey string) {
	a.panels.forget(endpoint, panelKey)
}

func discordPayloadFor(msg Message) discordPayload {
	embed := discordEmbed{
		Title:       msg.Title,
		Description: msg.Description,
		Color:       msg.Color,
		Timestamp:   msg.Timestamp,
		Fields:      make([]discordField, 0, len(msg.Fields)),
	}
	if msg.Footer != "" {
		embed.Footer = &discordFooter{Text: msg.Footer}
	}
	for _, f := range msg.Fields {
		embed.Fields = append(embed.Fields, discordField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	content := msg.Content
	if msg.Alert {
		content = strings.TrimSpace("🚨 " + content)
	}
	return discordPayload{Content: content, Embeds: []discordEmbed{embed}}
}

func withWait(endpoint string) string {
	if strings.Contains(endpoint, "?") {
		return endpoint + "&wait=true"
	}
	return endpoint + "?wait=true"
}

// discordMessageURL maps /api/webhooks/{id}/{token} to the edit endpoint of
// one of its messages.
func discordMessageURL(endpoint, msgID string) (string, bool) {
	if strings.TrimSpace(msgID) == "" {
		return "", false
	}
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || u.Host == "" {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[0] != "api" || parts[1] != "webhooks" {
		return "", false
	}
	u.Path = "/api/webhooks/" + parts[2] + "/" + parts[3] + "/messages/" + msgID
	u.RawQuery = ""
	return u.String(), true
}
