package notify

import (
	"fmt"
	"strings"
	"time"
)

// localeLayout renders times the way a en-US browser locale string does.
const localeLayout = "1/2/2006, 3:04:05 PM"

const (
	incidentGlyph    = "\U0001F6A8" // rotating light
	maintenanceGlyph = "\U0001F527" // wrench
)

// DiscordPayload is the body posted to a Discord webhook.
type DiscordPayload struct {
	Content string `json:"content"`
}

// SlackMessage is the body posted to a Slack incoming webhook.
type SlackMessage struct {
	Text   string       `json:"text,omitempty"`
	Blocks []SlackBlock `json:"blocks,omitempty"`
}

// SlackBlock is a Block Kit block.
type SlackBlock struct {
	Type     string         `json:"type"`
	Text     *SlackText     `json:"text,omitempty"`
	Fields   []SlackText    `json:"fields,omitempty"`
	Elements []SlackElement `json:"elements,omitempty"`
}

// SlackText is a Block Kit text object.
type SlackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// SlackElement is an interactive Block Kit element.
type SlackElement struct {
	Type string     `json:"type"`
	Text *SlackText `json:"text,omitempty"`
	URL  string     `json:"url,omitempty"`
}

// field is one labeled line shared by both platforms.
type field struct {
	label string
	value string
}

// FormatDiscord renders ev as a Discord payload. Times use loc (UTC if nil).
func FormatDiscord(ev Event, loc *time.Location) (DiscordPayload, error) {
	switch e := ev.(type) {
	case TextEvent:
		return DiscordPayload{Content: e.Text}, nil
	case IncidentEvent:
		return DiscordPayload{Content: discordContent(incidentGlyph, "Incident Update", e.Link, incidentFields(e, loc))}, nil
	case MaintenanceEvent:
		return DiscordPayload{Content: discordContent(maintenanceGlyph, "Maintenance Update", e.Link, maintenanceFields(e, loc))}, nil
	default:
		return DiscordPayload{}, fmt.Errorf("discord: %w: %T", ErrUnknownEvent, ev)
	}
}

// FormatSlack renders ev as Block Kit blocks. Times use loc (UTC if nil).
func FormatSlack(ev Event, loc *time.Location) (SlackMessage, error) {
	switch e := ev.(type) {
	case TextEvent:
		return SlackMessage{
			Text: e.Text,
			Blocks: []SlackBlock{{
				Type: "section",
				Text: &SlackText{Type: "mrkdwn", Text: e.Text},
			}},
		}, nil
	case IncidentEvent:
		title := fmt.Sprintf("%s Incident Update: %s", incidentGlyph, e.Name)
		return slackMessage(title, e.Link, incidentFields(e, loc)), nil
	case MaintenanceEvent:
		title := fmt.Sprintf("%s Maintenance Update: %s", maintenanceGlyph, e.Name)
		return slackMessage(title, e.Link, maintenanceFields(e, loc)), nil
	default:
		return SlackMessage{}, fmt.Errorf("slack: %w: %T", ErrUnknownEvent, ev)
	}
}

// PlainText renders ev as the text recorded in the message history.
func PlainText(ev Event, loc *time.Location) (string, error) {
	payload, err := FormatDiscord(ev, loc)
	if err != nil {
		return "", err
	}
	return payload.Content, nil
}

func incidentFields(e IncidentEvent, loc *time.Location) []field {
	fields := []field{
		{"Title", e.Name},
		{"Status", strings.ToUpper(e.Status)},
		{"Impact", strings.ToUpper(e.Impact)},
	}
	if e.ID != "" {
		fields = append(fields, field{"Incident ID", e.ID})
	}
	return append(fields, field{"Updated", formatLocal(e.UpdatedAt, loc)})
}

func maintenanceFields(e MaintenanceEvent, loc *time.Location) []field {
	fields := []field{
		{"Title", e.Name},
		{"Status", strings.ToUpper(e.Status)},
		{"Impact", strings.ToUpper(e.Impact)},
	}
	if !e.ScheduledFor.IsZero() {
		window := formatLocal(e.ScheduledFor, loc)
		if !e.ScheduledUntil.IsZero() {
			window += " - " + formatLocal(e.ScheduledUntil, loc)
		}
		fields = append(fields, field{"Scheduled", window})
	}
	return append(fields, field{"Updated", formatLocal(e.UpdatedAt, loc)})
}

func discordContent(glyph, heading, link string, fields []field) string {
	lines := []string{fmt.Sprintf("%s **%s**", glyph, heading), ""}
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("**%s:** %s", f.label, f.value))
	}
	if link != "" {
		lines = append(lines, "", fmt.Sprintf("View details: %s", link))
	}
	return strings.Join(lines, "\n")
}

func slackMessage(title, link string, fields []field) SlackMessage {
	blocks := []SlackBlock{
		{
			Type: "header",
			Text: &SlackText{Type: "plain_text", Text: title, Emoji: true},
		},
	}

	// Block Kit allows at most 10 fields per section.
	for start := 0; start < len(fields); start += 10 {
		end := min(start+10, len(fields))
		section := SlackBlock{Type: "section"}
		for _, f := range fields[start:end] {
			section.Fields = append(section.Fields, SlackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*%s:*\n%s", f.label, f.value),
			})
		}
		blocks = append(blocks, section)
	}

	if link != "" {
		blocks = append(blocks, SlackBlock{
			Type: "actions",
			Elements: []SlackElement{{
				Type: "button",
				Text: &SlackText{Type: "plain_text", Text: "View Details", Emoji: true},
				URL:  link,
			}},
		})
	}

	blocks = append(blocks, SlackBlock{Type: "divider"})
	return SlackMessage{Text: title, Blocks: blocks}
}

func formatLocal(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "unknown"
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(localeLayout)
}

// LoadLocation resolves an IANA timezone name, falling back to UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
