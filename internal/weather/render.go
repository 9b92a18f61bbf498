package weather

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/i474232898/cwa-weather-push/internal/common"
)

const (
	Title  = "六都今日天氣重點"
	Footer = "資料來源：中央氣象署 OpenData（今明 36 小時 / 第一時段）"

	missing = "—"
)

// Column widths in terminal cells. CJK characters occupy two cells.
const (
	cityWidth      = 6
	conditionWidth = 20
	popWidth       = 5
	tempWidth      = 9
)

// Ambiguous-width runes (°, —) count as one cell regardless of the host locale.
var cells = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

var shortNames = map[string]string{
	"臺北市": "臺北",
	"新北市": "新北",
	"桃園市": "桃園",
	"臺中市": "臺中",
	"臺南市": "臺南",
	"高雄市": "高雄",
}

// ShortName returns the two-character display name of a city.
func ShortName(city string) string {
	if s, ok := shortNames[city]; ok {
		return s
	}
	r := []rune(city)
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

// Emoji maps condition text to an icon. Keywords are checked in priority
// order and the first match wins.
func Emoji(condition string) string {
	t := condition
	switch {
	case t == "" || t == missing:
		return "❔"
	case strings.Contains(t, "雷"):
		return "⛈️"
	case strings.Contains(t, "雨"):
		return "🌧️"
	case common.HasAny(t, "霧", "霾"):
		return "🌫️"
	case strings.Contains(t, "陰"):
		return "☁️"
	case common.HasAll(t, "多雲", "晴"):
		return "🌤️"
	case strings.Contains(t, "多雲"):
		return "🌥️"
	case strings.Contains(t, "晴"):
		return "☀️"
	default:
		return "🌡️"
	}
}

func conditionText(r Record) string {
	if r.Condition == "" {
		return missing
	}
	return r.Condition
}

func intOrMissing(v *int) string {
	if v == nil {
		return missing
	}
	return strconv.Itoa(*v)
}

func tempRange(r Record) string {
	return intOrMissing(r.MinTemp) + "~" + intOrMissing(r.MaxTemp)
}

// Table renders records as a fixed-width table inside a text code fence.
func Table(records []Record) string {
	header := cells.FillRight("城市", cityWidth) + "  " +
		cells.FillRight("天氣", conditionWidth) + "  " +
		cells.FillLeft("PoP%", popWidth) + "  " +
		cells.FillLeft("T(°C)", tempWidth) + "  "

	lines := []string{header, strings.Repeat("-", cells.StringWidth(header))}
	for _, r := range records {
		wx := cells.Truncate(conditionText(r), conditionWidth, "…")
		lines = append(lines, cells.FillRight(ShortName(r.City), cityWidth)+"  "+
			cells.FillRight(wx, conditionWidth)+"  "+
			cells.FillLeft(intOrMissing(r.PoP), popWidth)+"  "+
			cells.FillLeft(tempRange(r), tempWidth)+"  "+
			Emoji(r.Condition))
	}

	return "```text\n" + strings.Join(lines, "\n") + "\n```"
}

// TextMessage renders the plain-text message: header, highlight, time range,
// table and attribution footer.
func TextMessage(records []Record) string {
	msg := []string{
		"📢 **" + Title + "**",
		Highlight(records),
		"",
		"🕒 " + TimeRange(records),
		"",
		Table(records),
		"",
		Footer,
	}
	return strings.TrimSpace(strings.Join(msg, "\n"))
}

// BuildEmbed renders the structured payload with one line per record.
func BuildEmbed(records []Record) Embed {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		pop := missing
		if r.PoP != nil {
			pop = fmt.Sprintf("%d%%", *r.PoP)
		}
		lines = append(lines, fmt.Sprintf("%s **%s**｜%s｜🌧️ %s｜🌡️ %s°C",
			Emoji(r.Condition), ShortName(r.City), conditionText(r), pop, tempRange(r)))
	}

	desc := "（無資料）"
	if len(lines) > 0 {
		desc = strings.Join(lines, "\n")
	}

	return Embed{
		Title:       Title,
		Description: fmt.Sprintf("%s\n\n🕒 %s\n\n%s", Highlight(records), TimeRange(records), desc),
		Footer:      &EmbedFooter{Text: Footer},
	}
}

// RenderMode selects how a batch is delivered.
type RenderMode string

const (
	ModeEmbed RenderMode = "embed"
	ModeText  RenderMode = "text"
)

// Render builds the webhook message for a batch.
func Render(mode RenderMode, records []Record) Message {
	if mode == ModeText {
		return Message{Content: TextMessage(records)}
	}
	return Message{Embeds: []Embed{BuildEmbed(records)}}
}
