package politician

import (
	"strings"
)

// Canonical political party constants.
const (
	PartyDemocrat            = "DEMOCRAT"
	PartyRepublican          = "REPUBLICAN"
	PartyLibertarian         = "LIBERTARIAN"
	PartyGreen               = "GREEN"
	PartyConstitution        = "CONSTITUTION"
	PartyPeaceAndFreedom     = "PEACE_AND_FREEDOM"
	PartyWorkingFamilies     = "WORKING_FAMILIES"
	PartyReform              = "REFORM"
	PartyAmericanIndependent = "AMERICAN_INDEPENDENT"
	PartyIndependent         = "INDEPENDENT"
	PartyNoPartyPreference   = "NO_PARTY_PREFERENCE"
	PartyNonpartisan         = "NONPARTISAN"
)

var partyAbbreviations = map[string]string{
	"D": PartyDemocrat, "DEM": PartyDemocrat, "DFL": PartyDemocrat,
	"R": PartyRepublican, "REP": PartyRepublican, "GOP": PartyRepublican,
	"L": PartyLibertarian, "LIB": PartyLibertarian, "LBT": PartyLibertarian,
	"G": PartyGreen, "GRN": PartyGreen,
	"I": PartyIndependent, "IND": PartyIndependent,
	"NPP": PartyNoPartyPreference, "NP": PartyNonpartisan,
}

// Ordered so that more specific phrases win over their substrings
// ("AMERICAN INDEPENDENT" before "INDEPENDENT").
var partyKeywords = []struct {
	keyword string
	party   string
}{
	{"AMERICAN INDEPENDENT", PartyAmericanIndependent},
	{"NO PARTY PREFERENCE", PartyNoPartyPreference},
	{"NONPARTISAN", PartyNonpartisan},
	{"NON PARTISAN", PartyNonpartisan},
	{"PEACE AND FREEDOM", PartyPeaceAndFreedom},
	{"WORKING FAMILIES", PartyWorkingFamilies},
	{"DEMOCRAT", PartyDemocrat},
	{"REPUBLICAN", PartyRepublican},
	{"LIBERTARIAN", PartyLibertarian},
	{"GREEN", PartyGreen},
	{"CONSTITUTION", PartyConstitution},
	{"REFORM", PartyReform},
	{"INDEPENDENT", PartyIndependent},
}

// NormalizeParty maps a raw party label to its canonical constant. It
// returns "" when the label is not recognized.
func NormalizeParty(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("-", " ", ".", "", "&", " AND ", "_", " ").Replace(s)
	s = collapseSpaces(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, " PARTY"))

	if p, ok := partyAbbreviations[s]; ok {
		return p
	}
	for _, k := range partyKeywords {
		if strings.Contains(s, k.keyword) {
			return k.party
		}
	}
	return ""
}
