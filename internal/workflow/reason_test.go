package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRefusalReasons 测试拒绝原因枚举
func TestRefusalReasons(t *testing.T) {
	reasons := RefusalReasons()
	assert.Len(t, reasons, 6)
	assert.Equal(t, ReasonIncomplete, reasons[0])
	assert.Equal(t, ReasonOther, reasons[5])

	for _, r := range reasons {
		assert.True(t, ValidRefusalReason(r))
	}
	assert.False(t, ValidRefusalReason("Pas envie"))
	assert.False(t, ValidRefusalReason(""))
}

// TestFormatRefusalComment 测试拒绝评论格式
func TestFormatRefusalComment(t *testing.T) {
	assert.Equal(t, "Motif : Format incorrect", FormatRefusalComment(ReasonWrongFormat, ""))
	assert.Equal(t,
		"Motif : Autre\n\nCommentaire : voir avec la direction",
		FormatRefusalComment(ReasonOther, "voir avec la direction"))
}
