// Package transcript 把房間歷史壓縮成精簡的逐字稿，作為 AI 供應商的輸入。
package transcript

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"planroom/internal/models"
)

const (
	DefaultWindowSize = 50

	// AIPlaceholder 取代 AI 回覆的完整內容
	AIPlaceholder = "[replied]"

	gapThreshold = time.Hour
)

// 保留字母、數字、底線、空白與 $，其餘字元移除。
// \s 只涵蓋 ASCII 空白，\p{Z} 補上 NBSP 與全形空白
var stripPattern = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\p{Z}$]+`)

type block struct {
	author string
	parts  []string
}

func (b *block) String() string {
	return b.author + ":" + strings.Join(b.parts, " ")
}

// Compress 把歷史壓縮成逐字稿。相同輸入必得相同輸出。
//
// 取最後 windowSize 筆；System 訊息丟棄，AI 訊息以 AIPlaceholder 代替，
// 其他訊息正規化並移除填充詞。同一作者的連續訊息合併成一行，
// 相隔超過一小時時插入 |GAP nH| 標記。第一行為標頭。
func Compress(history []models.HistoryEntry, windowSize int) string {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}

	sorted := make([]models.HistoryEntry, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	window := sorted
	if len(window) > windowSize {
		window = window[len(window)-windowSize:]
	}

	fold := cases.Fold()
	active := make(map[string]struct{})

	var (
		lines   []string
		current *block
		prev    time.Time
		hasPrev bool
	)
	flush := func() {
		if current != nil {
			lines = append(lines, current.String())
			current = nil
		}
	}

	for _, entry := range window {
		var text string
		switch entry.Author {
		case models.UsernameSystem:
			continue
		case models.UsernameAI:
			text = AIPlaceholder
		default:
			active[entry.Author] = struct{}{}
			text = Normalize(fold, entry.Content)
			if text == "" {
				continue
			}
		}

		if hasPrev {
			if gap := entry.Timestamp.Sub(prev); gap > gapThreshold {
				flush()
				lines = append(lines, fmt.Sprintf("|GAP %dH|", int(gap.Hours())))
			}
		}
		prev, hasPrev = entry.Timestamp, true

		if current != nil && current.author == entry.Author {
			// 連續的 AI 回覆只保留一個佔位符
			if entry.Author != models.UsernameAI {
				current.parts = append(current.parts, text)
			}
			continue
		}
		flush()
		current = &block{author: entry.Author, parts: []string{text}}
	}
	flush()

	out := header(active, len(history))
	if len(lines) > 0 {
		out += "\n" + strings.Join(lines, "\n")
	}
	return out
}

func header(active map[string]struct{}, total int) string {
	names := make([]string, 0, len(active))
	for name := range active {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("USERS %d: %s | MSGS %d", len(names), strings.Join(names, ", "), total)
}

// Normalize 對單則訊息做 case-fold、去標點並移除填充詞，回傳以空白連接的 token。
// fold 不可跨 goroutine 共用。
func Normalize(fold cases.Caser, content string) string {
	cleaned := stripPattern.ReplaceAllString(fold.String(content), "")

	fields := strings.Fields(cleaned)
	kept := fields[:0]
	for _, tok := range fields {
		if !IsStopword(tok) {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}
