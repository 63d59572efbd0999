// combatant_test.go

package gateway

import (
	"strings"
	"testing"
)

// TestValidateBattleText 战斗文本的长度与空白校验
func TestValidateBattleText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		wantOK bool
	}{
		{"空文本", "", false},
		{"纯空白", "   \n\t", false},
		{"正常文本", "이긴다!", true},
		{"200字符上限", strings.Repeat("가", 200), true},
		{"超过200字符", strings.Repeat("가", 201), false},
		{"英文长文本", strings.Repeat("a", 150), true},
	}

	for _, tt := range tests {
		errMsg := validateBattleText(tt.text)
		if (errMsg == "") != tt.wantOK {
			t.Errorf("%s: validateBattleText = %q, wantOK = %v", tt.name, errMsg, tt.wantOK)
		}
	}
}
