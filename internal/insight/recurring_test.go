package insight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/model"
)

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "NETFLIX.COM 866-579-7172", want: "netflixcom"},
		{input: "  Spotify   AB  #12345 ", want: "spotify ab"},
		{input: "TRSF E-BANKING DB 0103/FTSCY/WS95051", want: "trsf ebanking db ftscyws"},
		{input: "Café Müller 24/7", want: "café müller"},
		{input: "1234", want: ""},
		{input: "ACH_DEBIT PAYROLL_CO 0415", want: "ach_debit payroll_co"},
		{input: "Apt² RENT", want: "apt² rent"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDescription(tt.input))
		})
	}
}

func TestNormalizeDescription_Truncates(t *testing.T) {
	long := strings.Repeat("abcde ", 20)
	got := NormalizeDescription(long)
	assert.LessOrEqual(t, len([]rune(got)), maxMerchantKeyLen)
	assert.True(t, strings.HasPrefix(got, "abcde abcde"))
	assert.False(t, strings.HasSuffix(got, " "))
}

func TestNormalizeDescription_SharedPrefixConflates(t *testing.T) {
	prefix := strings.Repeat("x", maxMerchantKeyLen)
	assert.Equal(t, NormalizeDescription(prefix+" GYM"), NormalizeDescription(prefix+" RENT"))
}

func TestDetectRecurring_ZeroJitterMonthly(t *testing.T) {
	txns := []model.Transaction{
		spend(day(0), 15.99, "NETFLIX.COM"),
		spend(day(30), 15.99, "NETFLIX.COM"),
		spend(day(60), 15.99, "NETFLIX.COM"),
	}

	series := DetectRecurring(txns, nil)
	require.Len(t, series, 1)

	s := series[0]
	assert.Equal(t, "netflixcom", s.MerchantKey)
	assert.Equal(t, FrequencyMonthly, s.Frequency)
	assert.Equal(t, 1.0, s.Confidence)
	assert.Equal(t, 3, s.OccurrenceCount)
	assert.InDelta(t, 15.99, s.AverageAmount, 1e-9)
	assert.Equal(t, civilDay(day(60)), s.LastSeen)
	require.NotNil(t, s.NextExpected)
	assert.Equal(t, civilDay(day(90)), *s.NextExpected)
}

func TestDetectRecurring_HighJitterExcluded(t *testing.T) {
	var txns []model.Transaction
	for _, d := range []int{0, 5, 41, 43, 90} {
		txns = append(txns, spend(day(d), 40, "TOKO SERBA ADA"))
	}

	analysis := AnalyzeGroup("toko serba ada", txns, nil)
	assert.False(t, analysis.IsRecurring)
	assert.LessOrEqual(t, analysis.Consistency, 0.7)
	assert.Nil(t, analysis.Series.NextExpected)

	assert.Empty(t, DetectRecurring(txns, nil))
}

func TestDetectRecurring_Idempotent(t *testing.T) {
	var txns []model.Transaction
	for i := 0; i < 6; i++ {
		txns = append(txns, spend(day(i*7), 12.5, "GYM CLUB"))
		txns = append(txns, spend(day(i*30+2), 900, "RENT PAYMENT"))
		txns = append(txns, spend(day(i*13+1), float64(10+i), "Random Store "+string(rune('A'+i))))
	}

	first := DetectRecurring(txns, nil)
	second := DetectRecurring(txns, nil)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestDetectRecurring_InputOrderIndependent(t *testing.T) {
	txns := []model.Transaction{
		spend(day(60), 10, "SPOTIFY"),
		spend(day(0), 10, "SPOTIFY"),
		spend(day(30), 10, "SPOTIFY"),
	}
	series := DetectRecurring(txns, nil)
	require.Len(t, series, 1)
	assert.Equal(t, civilDay(day(60)), series[0].LastSeen)
}

func TestDetectRecurring_IgnoresSmallGroupsAndIncome(t *testing.T) {
	txns := []model.Transaction{
		spend(day(0), 10, "ONCE"),
		spend(day(30), 10, "ONCE"),
		income(day(0), 5000),
		income(day(30), 5000),
		income(day(60), 5000),
	}
	assert.Empty(t, DetectRecurring(txns, nil))
}

func TestDetectRecurring_SameDayGroup(t *testing.T) {
	txns := []model.Transaction{
		spend(day(3), 5, "PARKING"),
		spend(day(3), 5, "PARKING"),
		spend(day(3), 5, "PARKING"),
	}
	analysis := AnalyzeGroup("parking", txns, nil)
	assert.False(t, analysis.IsRecurring)
	assert.Zero(t, analysis.Consistency)
}

func TestDetectRecurring_SortedByConfidence(t *testing.T) {
	var txns []model.Transaction
	for _, d := range []int{0, 30, 60, 90} {
		txns = append(txns, spend(day(d), 100, "INSURANCE"))
	}
	for _, d := range []int{0, 7, 15, 21, 28} {
		txns = append(txns, spend(day(d), 20, "GROCER"))
	}

	series := DetectRecurring(txns, nil)
	require.Len(t, series, 2)
	assert.Equal(t, "insurance", series[0].MerchantKey)
	assert.Equal(t, "grocer", series[1].MerchantKey)
	assert.Equal(t, FrequencyWeekly, series[1].Frequency)
	assert.Greater(t, series[0].Confidence, series[1].Confidence)
}

func TestClassifyFrequency(t *testing.T) {
	assert.Equal(t, FrequencyWeekly, classifyFrequency(7))
	assert.Equal(t, FrequencyMonthly, classifyFrequency(7.5))
	assert.Equal(t, FrequencyMonthly, classifyFrequency(31))
	assert.Equal(t, FrequencyQuarterly, classifyFrequency(93))
	assert.Equal(t, FrequencyIrregular, classifyFrequency(94))
}

func TestAnalyzeGroup_RoundsNextExpected(t *testing.T) {
	// Gaps of 30 and 31 days: mean 30.5 rounds to 31.
	txns := []model.Transaction{
		spend(day(0), 50, "PHONE"),
		spend(day(30), 50, "PHONE"),
		spend(day(61), 50, "PHONE"),
	}
	analysis := AnalyzeGroup("phone", txns, nil)
	require.True(t, analysis.IsRecurring)
	require.NotNil(t, analysis.Series.NextExpected)
	assert.Equal(t, civilDay(day(92)), *analysis.Series.NextExpected)
}

func TestMonthlyEquivalent(t *testing.T) {
	assert.InDelta(t, 43.333, MonthlyEquivalent(RecurringSeries{Frequency: FrequencyWeekly, AverageAmount: 10}), 0.001)
	assert.Equal(t, 10.0, MonthlyEquivalent(RecurringSeries{Frequency: FrequencyMonthly, AverageAmount: 10}))
	assert.InDelta(t, 10.0, MonthlyEquivalent(RecurringSeries{Frequency: FrequencyQuarterly, AverageAmount: 30}), 1e-9)
	assert.InDelta(t, 5.0, MonthlyEquivalent(RecurringSeries{Frequency: FrequencyIrregular, AverageAmount: 20, AverageInterval: 120}), 1e-9)
}

func TestDominantCategory(t *testing.T) {
	txns := []model.Transaction{
		withCategory(spend(day(0), 1, "a"), "Bills"),
		withCategory(spend(day(1), 1, "a"), "Entertainment"),
		withCategory(spend(day(2), 1, "a"), "Entertainment"),
		spend(day(3), 1, "a"),
	}
	assert.Equal(t, "Entertainment", dominantCategory(txns))
}
