package transcript

// stopwords 是壓縮時移除的英文填充詞（已 case-fold、去除標點）。
// 否定詞（no、not、dont）刻意不列入，避免改變語意。
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "so": {}, "if": {}, "then": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "at": {}, "for": {}, "with": {}, "from": {}, "by": {},
	"about": {}, "as": {}, "is": {}, "am": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"been": {}, "being": {}, "it": {}, "its": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"there": {}, "here": {}, "i": {}, "im": {}, "me": {}, "my": {}, "we": {}, "us": {}, "our": {},
	"you": {}, "your": {}, "he": {}, "she": {}, "they": {}, "them": {}, "just": {}, "really": {},
	"very": {}, "also": {}, "too": {}, "like": {}, "um": {}, "uh": {}, "hmm": {}, "hey": {},
	"hi": {}, "hello": {}, "ok": {}, "okay": {}, "yeah": {}, "yep": {}, "oh": {}, "well": {},
	"lol": {}, "lets": {}, "do": {}, "does": {}, "did": {}, "have": {}, "has": {}, "had": {},
	"will": {}, "would": {}, "can": {}, "could": {}, "should": {}, "gonna": {}, "wanna": {},
}

// IsStopword 回報 token（已正規化）是否為填充詞
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
