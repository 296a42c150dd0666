package validation

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formmodal/pkg/model"
)

func TestValidate_ReportsEveryFailingFieldInOrder(t *testing.T) {
	t.Parallel()

	engine := New()
	fields := []model.FieldDescriptor{
		{Field: "name", Title: "姓名", Required: true},
		{Field: "email", Title: "邮箱", Verify: model.Verify{Pattern: "email"}},
		{Field: "age", Title: "年龄", Verify: model.Verify{Pattern: `^\d+$`}},
		{Field: "nick", Title: "昵称"},
	}
	values := map[string]any{
		"name":  "",
		"email": "not-an-email",
		"age":   "x1",
	}

	got := engine.Validate(fields, values)

	require.Equal(t, []string{
		"姓名 不能为空！",
		"邮箱 邮箱格式不正确",
		"年龄 格式错误",
	}, got)
}

func TestValidate_RequiredStopsFurtherChecks(t *testing.T) {
	t.Parallel()

	called := false
	field := model.FieldDescriptor{
		Field:    "code",
		Title:    "Code",
		Required: true,
		Verify: model.Verify{Func: func(any) error {
			called = true
			return nil
		}},
	}

	msg, ok := New().ValidateField(field, nil)
	assert.False(t, ok)
	assert.Equal(t, "Code 不能为空！", msg)
	assert.False(t, called, "verifier must not run for empty required values")
}

func TestValidate_EmptyOptionalSkipsPattern(t *testing.T) {
	t.Parallel()

	field := model.FieldDescriptor{Field: "phone", Title: "手机", Verify: model.Verify{Pattern: PatternMobilePhone}}
	_, ok := New().ValidateField(field, "")
	assert.True(t, ok)

	_, ok = New().ValidateField(model.FieldDescriptor{Field: "tags", Required: true}, []string{})
	assert.False(t, ok, "empty list counts as missing")
}

func TestValidate_VerifyFunc(t *testing.T) {
	t.Parallel()

	engine := New()
	field := model.FieldDescriptor{Field: "n", Title: "Qty"}

	field.Verify.Func = func(any) error { return errors.New("must be even") }
	msg, ok := engine.ValidateField(field, 3.0)
	assert.False(t, ok)
	assert.Equal(t, "must be even", msg)

	field.Verify.Func = func(any) error { return errors.New("") }
	msg, ok = engine.ValidateField(field, 3.0)
	assert.False(t, ok)
	assert.Equal(t, "Qty 验证失败", msg)

	field.Verify.Func = func(any) error { return nil }
	_, ok = engine.ValidateField(field, 4.0)
	assert.True(t, ok)
}

func TestValidate_InvalidRawPatternFailsClosed(t *testing.T) {
	t.Parallel()

	field := model.FieldDescriptor{Field: "p", Title: "P", Verify: model.Verify{Pattern: `(?=x)`}}
	msg, ok := New().ValidateField(field, "x")
	assert.False(t, ok)
	assert.Equal(t, "P 格式错误", msg)
}

func TestValidate_CustomPatternTable(t *testing.T) {
	t.Parallel()

	table := NewPatterns()
	table.Register(Pattern{Name: "sku", Regexp: regexp.MustCompile(`^SKU-\d+$`), Message: " 不是有效的 SKU"})
	engine := New(WithPatterns(table))

	field := model.FieldDescriptor{Field: "sku", Title: "SKU", Verify: model.Verify{Pattern: "Sku"}}
	msg, ok := engine.ValidateField(field, "ABC")
	assert.False(t, ok)
	assert.Equal(t, "SKU 不是有效的 SKU", msg)

	_, ok = engine.ValidateField(field, "SKU-12")
	assert.True(t, ok)
}

func TestBuiltinPatterns(t *testing.T) {
	t.Parallel()

	table := DefaultPatterns()
	cases := []struct {
		pattern string
		value   string
		want    bool
	}{
		{PatternEmail, "ada@example.com", true},
		{PatternEmail, "ada@example", false},
		{PatternMobilePhone, "13812345678", true},
		{PatternMobilePhone, "12812345678", false},
		{PatternURL, "https://www.example.com/path?q=1", true},
		{PatternURL, "ftp://example.com", false},
		{PatternInteger, "-12", true},
		{PatternPositiveInteger, "-12", false},
		{PatternFloat, "-1.5", true},
		{PatternPositiveFloat, "1.", false},
		{PatternChinese, "中文", true},
		{PatternChinese, "中a", false},
		{PatternBankCard, "6222021234567890", true},
		{PatternPostalCode, "100000", true},
		{PatternIPv4, "192.168.1.255", true},
		{PatternIPv4, "256.1.1.1", false},
		{PatternUsername, "ada_1", true},
		{PatternUsername, "1ada", false},
		{PatternStrongPassword, "Passw0rd!", true},
		{PatternStrongPassword, "password1!", false},
		{PatternStrongPassword, "Passw0rd!#", false},
		{PatternStrongPassword, "Pa0!", false},
	}
	for _, tc := range cases {
		p, ok := table.Lookup(tc.pattern)
		require.True(t, ok, tc.pattern)
		assert.Equal(t, tc.want, p.Match(tc.value), "%s(%q)", tc.pattern, tc.value)
	}
}

func TestValidIDCard(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"11010519491231002X": true,
		"11010519491231002x": true,
		"440308199001011239": true,
		"11010120000229123X": true,
		"440308199001011238": false, // checksum
		"110101200102291234": false, // 2001-02-29
		"010105194912310021": false, // leading zero
		"1101051949123100":   false,
	}
	for id, want := range cases {
		assert.Equal(t, want, ValidIDCard(id), id)
	}

	const body = "11010519491231002"
	accepted := 0
	for _, check := range "0123456789X" {
		if ValidIDCard(body + string(check)) {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted, "only the computed check character may pass")

	field := model.FieldDescriptor{Field: "id", Title: "身份证", Verify: model.Verify{Pattern: "id_card"}}
	msg, ok := New().ValidateField(field, "440308199001011238")
	assert.False(t, ok)
	assert.Equal(t, "身份证 身份证号码不正确", msg)
}
