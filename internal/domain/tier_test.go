package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseRiskTier(t *testing.T) {
	for _, tc := range []struct {
		input   string
		want    RiskTier
		wantErr bool
	}{
		{input: "low", want: RiskLow},
		{input: "medium", want: RiskMedium},
		{input: "high", want: RiskHigh},
		{input: "extreme", wantErr: true},
		{input: "", wantErr: true},
		{input: "Low", wantErr: true},
	} {
		tier, err := ParseRiskTier(tc.input)
		if tc.wantErr {
			require.Error(t, err, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		require.Equal(t, tc.want, tier)
	}
}

func TestDefaultTierPoliciesAreValid(t *testing.T) {
	policies := DefaultTierPolicies()
	require.NoError(t, policies.Validate())

	low := policies[RiskLow]
	require.True(t, low.ProfitTargetPct.Equal(decimal.NewFromInt(5)))
	require.True(t, low.StopLossPct.Equal(decimal.NewFromInt(-2)))
	require.Equal(t, 1*time.Minute, low.MinHold)
}

func TestTierPoliciesValidate(t *testing.T) {
	policies := DefaultTierPolicies()
	delete(policies, RiskMedium)
	require.Error(t, policies.Validate())

	policies = DefaultTierPolicies()
	broken := policies[RiskLow]
	broken.StopLossPct = decimal.NewFromInt(2)
	policies[RiskLow] = broken
	require.Error(t, policies.Validate())
}
