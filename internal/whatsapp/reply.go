package whatsapp

import (
	"strings"

	"github.com/vicu/vicu-api/internal/textnorm"
)

type ReplyAction string

const (
	ReplyDone  ReplyAction = "done"
	ReplyLater ReplyAction = "later"
	ReplyStuck ReplyAction = "stuck"
)

var (
	doneWords  = []string{"listo", "lista", "hecho", "hecha", "ya lo hice", "termine", "completado", "done", "si", "ok", "👍", "✅"}
	stuckWords = []string{"atorado", "atorada", "atascado", "atascada", "bloqueado", "no se", "no puedo", "ayuda", "stuck", "help"}
	laterWords = []string{"despues", "luego", "mas tarde", "manana", "ahorita no", "later", "tomorrow"}
)

// ClassifyReply maps a free-text reminder reply onto an action. A leading
// 1, 2 or 3 picks done, later or stuck; otherwise keywords decide, and
// anything unrecognized is treated as later.
func ClassifyReply(text string) ReplyAction {
	folded := textnorm.Fold(text)
	if folded == "" {
		return ReplyLater
	}

	switch folded[0] {
	case '1':
		return ReplyDone
	case '2':
		return ReplyLater
	case '3':
		return ReplyStuck
	}

	// Stuck and later phrases often contain done words ("no se si ya"), so
	// they are checked first.
	if matchesAny(folded, stuckWords) {
		return ReplyStuck
	}
	if matchesAny(folded, laterWords) {
		return ReplyLater
	}
	if matchesAny(folded, doneWords) {
		return ReplyDone
	}
	return ReplyLater
}

// matchesAny matches multi-word phrases as substrings and single words as
// whole tokens, so "si" does not match "sigo".
func matchesAny(folded string, words []string) bool {
	tokens := strings.FieldsFunc(folded, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?' || r == '¡' || r == '¿'
	})
	for _, w := range words {
		if strings.Contains(w, " ") {
			if strings.Contains(folded, w) {
				return true
			}
			continue
		}
		for _, t := range tokens {
			if t == w {
				return true
			}
		}
	}
	return false
}
