package segment

import (
	"fmt"
	"sync"

	"github.com/go-ego/gse"
	"github.com/rs/zerolog/log"
)

// Builtin returns the simplified Chinese dictionary embedded in gse. It is
// loaded on first use and shared afterwards.
var Builtin = sync.OnceValues(loadBuiltin)

func loadBuiltin() (*Dictionary, error) {
	var seg gse.Segmenter
	seg.SkipLog = true
	if err := seg.LoadDictEmbed("zh_s"); err != nil {
		return nil, fmt.Errorf("load embedded dictionary: %w", err)
	}

	d := NewDictionary()
	d.builtin = &seg
	d.total = seg.Dict.TotalFreq()
	d.maxLen = max(d.maxLen, seg.Dict.MaxTokenLen())
	log.Debug().Int("words", d.Len()).Float64("total_freq", d.total).Msg("embedded dictionary loaded")
	return d, nil
}
