package rank

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/cognicore/chatreport/pkg/chatreport/corpus"
	"github.com/cognicore/chatreport/pkg/chatreport/funstats"
	"github.com/cognicore/chatreport/pkg/chatreport/report"
	"github.com/cognicore/chatreport/pkg/chatreport/stoplist"
)

// Namer resolves a sender id to its display name.
type Namer interface {
	Name(id corpus.ID) string
}

// WordOptions shape the exported word list.
type WordOptions struct {
	TopN            int
	ContributorTopN int
	SampleCount     int
	Policy          stoplist.Policy
}

// Words builds the ranked word list from filtered frequencies. Stopwords and
// blacklisted words are checked once more on the way out.
func Words(freq map[string]int, contributors map[string]map[corpus.ID]int, samples map[string][]string, names Namer, opts WordOptions) []report.Word {
	out := make([]report.Word, 0, min(len(freq), max(opts.TopN, 0)))
	for _, wc := range Top(freq, opts.TopN) {
		if opts.Policy.Stopped(wc.Key) || opts.Policy.Blocked(wc.Key) {
			continue
		}
		out = append(out, report.Word{
			Word:         wc.Key,
			Freq:         wc.N,
			Contributors: Contributors(contributors[wc.Key], names, opts.ContributorTopN),
			Samples:      truncate(samples[wc.Key], opts.SampleCount),
		})
	}
	return out
}

// Contributors lists the top senders of one word.
func Contributors(byUser map[corpus.ID]int, names Namer, n int) []report.Contributor {
	out := []report.Contributor{}
	for _, uc := range Top(byUser, n) {
		out = append(out, report.Contributor{Name: names.Name(uc.Key), UIN: string(uc.Key), Count: uc.N})
	}
	return out
}

func truncate(list []string, n int) []string {
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return append([]string{}, list...)
}

// LongForm is the leaderboard ranked by characters per message.
const LongForm = "长文王"

// Board binds a leaderboard name to the counter it ranks.
type Board struct {
	Name string
	Kind funstats.Kind
}

// Boards lists the leaderboards in presentation order. LongForm sits after
// the character board and is ranked separately.
var Boards = []Board{
	{"话痨榜", funstats.Messages},
	{"字数榜", funstats.Chars},
	{"图片狂魔", funstats.Images},
	{"合并转发王", funstats.Forwards},
	{"回复狂", funstats.Replies},
	{"被回复最多", funstats.Replied},
	{"艾特狂", funstats.Ats},
	{"被艾特最多", funstats.Ated},
	{"表情帝", funstats.Emojis},
	{"链接分享王", funstats.Links},
	{"深夜党", funstats.Night},
	{"早起鸟", funstats.Morning},
	{"复读机", funstats.Repeats},
}

// Leaderboards ranks every sender counter, keeping the top n senders each.
func Leaderboards(s *funstats.Stats, names Namer, n int) report.Rankings {
	out := make(report.Rankings, 0, len(Boards)+1)
	for i, b := range Boards {
		out = append(out, board(b.Name, s.Counter(b.Kind), names, n))
		if i == 1 {
			out = append(out, longForm(s.CharsPerMessage, names, n))
		}
	}
	return out
}

func board(name string, counts map[corpus.ID]int, names Namer, n int) report.Leaderboard {
	lb := report.Leaderboard{Name: name, Entries: []report.Entry{}}
	for _, c := range Top(counts, n) {
		lb.Entries = append(lb.Entries, report.Entry{
			Name:  names.Name(c.Key),
			UIN:   string(c.Key),
			Value: report.Value{Count: c.N},
		})
	}
	return lb
}

func longForm(avg map[corpus.ID]float64, names Namer, n int) report.Leaderboard {
	ids := make([]corpus.ID, 0, len(avg))
	for id := range avg {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b corpus.ID) int {
		switch {
		case avg[a] > avg[b]:
			return -1
		case avg[a] < avg[b]:
			return 1
		}
		return cmp.Compare(a, b)
	})
	if n >= 0 && len(ids) > n {
		ids = ids[:n]
	}

	lb := report.Leaderboard{Name: LongForm, Entries: []report.Entry{}}
	for _, id := range ids {
		lb.Entries = append(lb.Entries, report.Entry{
			Name:  names.Name(id),
			UIN:   string(id),
			Value: report.Value{Text: fmt.Sprintf("%.1f字/条", avg[id])},
		})
	}
	return lb
}
