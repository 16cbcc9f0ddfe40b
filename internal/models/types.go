package models

import "fmt"

// Kind classifies which journal form a record came from.
type Kind string

const (
	KindDailyMemo           Kind = "daily_memo"
	KindWeeklyReport        Kind = "weekly_report"
	KindMonthlyPresentation Kind = "monthly_presentation"
)

var ValidKinds = map[Kind]bool{
	KindDailyMemo:           true,
	KindWeeklyReport:        true,
	KindMonthlyPresentation: true,
}

func (k Kind) IsValid() bool {
	return ValidKinds[k]
}

// Kinds returns every kind in export order.
func Kinds() []Kind {
	return []Kind{KindDailyMemo, KindWeeklyReport, KindMonthlyPresentation}
}

// kindAliases lets URLs and CLI flags use the short page names.
var kindAliases = map[string]Kind{
	"daily":   KindDailyMemo,
	"weekly":  KindWeeklyReport,
	"monthly": KindMonthlyPresentation,
}

// ParseKind accepts either the table name or the short alias.
func ParseKind(s string) (Kind, error) {
	if k := Kind(s); k.IsValid() {
		return k, nil
	}
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown record kind %q", s)
}

// Slug is the short name used in page routes.
func (k Kind) Slug() string {
	for alias, kind := range kindAliases {
		if kind == k {
			return alias
		}
	}
	return string(k)
}

// Field describes one user-editable column.
type Field struct {
	Name        string // column name
	FormLabel   string // label shown on the entry form
	ExportLabel string // bullet label in the Markdown export
	Placeholder string
	Required    bool
	Multiline   bool
	// Rule is a go-playground/validator tag applied to the trimmed value.
	Rule string
}

// Schema is the static definition of a record kind.
type Schema struct {
	Kind    Kind
	Table   string
	Title   string // page title
	Section string // Markdown section heading
	// LabelField names the field used in the Markdown row heading;
	// LabelPrefix is written before its value.
	LabelField  string
	LabelPrefix string
	Fields      []Field
}

// Columns returns the user field names in declaration order.
func (s Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Name
	}
	return cols
}

// AllColumns returns id, the user fields and created_at.
func (s Schema) AllColumns() []string {
	cols := append([]string{"id"}, s.Columns()...)
	return append(cols, "created_at")
}

// Field looks up a field by column name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// BodyFields returns every field except the label field.
func (s Schema) BodyFields() []Field {
	out := make([]Field, 0, len(s.Fields)-1)
	for _, f := range s.Fields {
		if f.Name != s.LabelField {
			out = append(out, f)
		}
	}
	return out
}

var schemas = map[Kind]Schema{
	KindDailyMemo: {
		Kind:       KindDailyMemo,
		Table:      "daily_memo",
		Title:      "1日1枚メモ",
		Section:    "Daily Memos",
		LabelField: "date",
		Fields: []Field{
			{Name: "date", FormLabel: "日付", Required: true, Rule: "required,datetime=2006-01-02"},
			{Name: "fact", FormLabel: "今日の学び・気づき（事実）", ExportLabel: "事実", Multiline: true, Placeholder: "例：物価上昇のニュースを見た。"},
			{Name: "question", FormLabel: "なぜそうなっている？（問い）", ExportLabel: "問い", Multiline: true, Placeholder: "例：なぜ利上げは物価に効くのか？"},
			{Name: "conclusion", FormLabel: "自分の考え（結論）", ExportLabel: "結論", Multiline: true, Placeholder: "例：需要と金利の関係で..."},
			{Name: "next_topic", FormLabel: "次に調べたいこと", ExportLabel: "次に調べたいこと", Multiline: true, Placeholder: "例：利上げと景気の関係"},
		},
	},
	KindWeeklyReport: {
		Kind:        KindWeeklyReport,
		Table:       "weekly_report",
		Title:       "週1レポート（A4一枚）",
		Section:     "Weekly Reports",
		LabelField:  "theme",
		LabelPrefix: "テーマ: ",
		Fields: []Field{
			{Name: "theme", FormLabel: "テーマ", Required: true, Rule: "required", Placeholder: "例：なぜ同じニュースでも意見が分かれるのか？"},
			{Name: "conclusion", FormLabel: "結論（1行）", ExportLabel: "結論", Multiline: true},
			{Name: "evidence1", FormLabel: "根拠①", ExportLabel: "根拠1", Multiline: true},
			{Name: "evidence2", FormLabel: "根拠②", ExportLabel: "根拠2", Multiline: true},
			{Name: "evidence3", FormLabel: "根拠③", ExportLabel: "根拠3", Multiline: true},
			{Name: "counter", FormLabel: "反対意見／反論", ExportLabel: "反対意見/反論", Multiline: true},
			{Name: "summary", FormLabel: "まとめ（学び・次の問い）", ExportLabel: "まとめ", Multiline: true},
		},
	},
	KindMonthlyPresentation: {
		Kind:        KindMonthlyPresentation,
		Table:       "monthly_presentation",
		Title:       "月1ミニ発表（3〜5枚相当）",
		Section:     "Monthly Presentations",
		LabelField:  "title",
		LabelPrefix: "タイトル: ",
		Fields: []Field{
			{Name: "title", FormLabel: "タイトル", Required: true, Rule: "required", Placeholder: "例：SNS時代に“正しさ”をどう考えるか？"},
			{Name: "problem", FormLabel: "問題提起", ExportLabel: "問題提起", Multiline: true, Placeholder: "例：最近こう感じた／こういう出来事があった"},
			{Name: "hypothesis", FormLabel: "私の仮説（結論）", ExportLabel: "仮説/結論", Multiline: true, Placeholder: "例：○○が原因だと思う"},
			{Name: "reasoning1", FormLabel: "根拠1（経験）", ExportLabel: "根拠1", Multiline: true},
			{Name: "reasoning2", FormLabel: "根拠2（データ）", ExportLabel: "根拠2", Multiline: true},
			{Name: "reasoning3", FormLabel: "根拠3（引用）", ExportLabel: "根拠3", Multiline: true},
			{Name: "counter_reassert", FormLabel: "反論と再主張", ExportLabel: "反論と再主張", Multiline: true},
			{Name: "takeaway", FormLabel: "まとめ・学び・次の問い", ExportLabel: "まとめ・学び・次の問い", Multiline: true},
		},
	},
}

// SchemaFor returns the schema of k. The second result is false for an
// unknown kind.
func SchemaFor(k Kind) (Schema, bool) {
	s, ok := schemas[k]
	return s, ok
}

// MustSchema is SchemaFor for kinds already known to be valid.
func MustSchema(k Kind) Schema {
	s, ok := schemas[k]
	if !ok {
		panic(fmt.Sprintf("models: no schema for kind %q", k))
	}
	return s
}
