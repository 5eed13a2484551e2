package parser

import (
	"regexp"
	"strings"

	"github.com/shouni/go-lead-harvester/pkg/types"
)

// EmailPattern は、ローカル部@ドメイン.TLD 形式のメールアドレスに一致する正規表現です。
// TLD は2文字以上の英字である必要があります。
const EmailPattern = `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`

var emailRegex = regexp.MustCompile(EmailPattern)

// IsEmail は、文字列全体がメールアドレスのパターンに一致するかを判定します。
func IsEmail(s string) bool {
	loc := emailRegex.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

// ParseLeads は、ページの可視テキストを行単位で走査し、メールアドレスを含む行ごとに
// LeadRecord を1件生成します。I/O は一切行いません。
//
// 1行に複数のメールアドレスがあっても、最初の一致のみを使用します。
// 名前は一致箇所より前の文字列をトリムしたもので、空の場合は types.UnknownName になります。
func ParseLeads(text, domain string) []types.LeadRecord {
	var records []types.LeadRecord

	for _, line := range strings.Split(text, "\n") {
		record, ok := ParseLine(line, domain)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records
}

// ParseLine は、1行分のテキストからリードを生成します。メールアドレスが無ければ false を返します。
func ParseLine(line, domain string) (types.LeadRecord, bool) {
	loc := emailRegex.FindStringIndex(line)
	if loc == nil {
		return types.LeadRecord{}, false
	}

	name := strings.TrimSpace(line[:loc[0]])
	if name == "" {
		name = types.UnknownName
	}

	return types.LeadRecord{
		Name:         name,
		Email:        line[loc[0]:loc[1]],
		Position:     types.PlaceholderPosition,
		SourceDomain: domain,
	}, true
}
