package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

const SignatureHeader = "X-Hub-Signature-256"

var ErrInvalidSignature = errors.New("invalid webhook signature")

type Verification int

const (
	VerificationValid Verification = iota
	// VerificationSkipped means no app secret is configured.
	VerificationSkipped
)

// VerifySignature checks header ("sha256=<hex>") against an HMAC-SHA256 of
// the raw body.
func VerifySignature(secret string, body []byte, header string) (Verification, error) {
	if secret == "" {
		return VerificationSkipped, nil
	}

	sig, ok := strings.CutPrefix(strings.TrimSpace(header), "sha256=")
	if !ok {
		return VerificationValid, ErrInvalidSignature
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return VerificationValid, ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return VerificationValid, ErrInvalidSignature
	}
	return VerificationValid, nil
}

// Sign returns the header value VerifySignature accepts for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

type InboundMessage struct {
	ID   string
	From string
	Text string
	// ReplyTo is the provider id of the message being answered, if any.
	ReplyTo   string
	Timestamp time.Time
}

type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					ID        string `json:"id"`
					From      string `json:"from"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      struct {
						Body string `json:"body"`
					} `json:"text"`
					Button struct {
						Text string `json:"text"`
					} `json:"button"`
					Interactive struct {
						ButtonReply struct {
							Title string `json:"title"`
						} `json:"button_reply"`
					} `json:"interactive"`
					Context struct {
						ID string `json:"id"`
					} `json:"context"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ParseInbound extracts user messages from a Cloud API webhook body.
// Status callbacks and unsupported message types are ignored.
func ParseInbound(body []byte) ([]InboundMessage, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}

	var out []InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				var text string
				switch m.Type {
				case "text":
					text = m.Text.Body
				case "button":
					text = m.Button.Text
				case "interactive":
					text = m.Interactive.ButtonReply.Title
				default:
					continue
				}
				if m.ID == "" || m.From == "" {
					continue
				}

				msg := InboundMessage{
					ID:      m.ID,
					From:    "+" + strings.TrimPrefix(m.From, "+"),
					Text:    strings.TrimSpace(text),
					ReplyTo: m.Context.ID,
				}
				if secs, err := strconv.ParseInt(m.Timestamp, 10, 64); err == nil {
					msg.Timestamp = time.Unix(secs, 0).UTC()
				}
				out = append(out, msg)
			}
		}
	}
	return out, nil
}
