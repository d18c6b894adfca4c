package hybrid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantReply    string
		wantDocument string
	}{
		{
			name:         "empty payload",
			raw:          "",
			wantReply:    "",
			wantDocument: "",
		},
		{
			name:         "no sentinel",
			raw:          "  Looks solid overall.  \n",
			wantReply:    "Looks solid overall.",
			wantDocument: "",
		},
		{
			name:         "reply and document",
			raw:          "All good." + Sentinel + "<doc>",
			wantReply:    "All good.",
			wantDocument: "<doc>",
		},
		{
			name:         "whitespace around both parts",
			raw:          "\n Score: 82/100 \n" + Sentinel + "\n  Zhang* | Data Analyst \n",
			wantReply:    "Score: 82/100",
			wantDocument: "Zhang* | Data Analyst",
		},
		{
			name:         "empty reply",
			raw:          Sentinel + "resume body",
			wantReply:    "",
			wantDocument: "resume body",
		},
		{
			name:         "empty document",
			raw:          "reply only" + Sentinel,
			wantReply:    "reply only",
			wantDocument: "",
		},
		{
			name:         "only first sentinel splits",
			raw:          "a" + Sentinel + "b" + Sentinel + "c",
			wantReply:    "a",
			wantDocument: "b" + Sentinel + "c",
		},
		{
			name:         "partial sentinel is plain text",
			raw:          "reply ###$$$简历文本 rest",
			wantReply:    "reply ###$$$简历文本 rest",
			wantDocument: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, document := Split(tt.raw)
			assert.Equal(t, tt.wantReply, reply)
			assert.Equal(t, tt.wantDocument, document)
		})
	}
}

func TestJoinSplitRoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"All good.", "<doc>"},
		{"  padded reply ", " padded doc\n"},
		{"多行\n回复", "简历\n内容"},
	}

	for _, p := range pairs {
		reply, document := Split(Join(p[0], p[1]))
		assert.Equal(t, strings.TrimSpace(p[0]), reply)
		assert.Equal(t, strings.TrimSpace(p[1]), document)
	}
}

func TestJoinWithoutDocument(t *testing.T) {
	assert.Equal(t, "just a reply", Join("just a reply", ""))
}
