package fiche

import "strings"

type (
	// RecipientRule yields a candidate address for a group, or "".
	RecipientRule func(g ScheduleGroup) string

	// RecipientPolicy resolves to the first non-empty candidate of its rules.
	RecipientPolicy []RecipientRule
)

// Override always yields addr; used to divert every notification in test environments.
func Override(addr string) RecipientRule {
	return func(ScheduleGroup) string { return addr }
}

func InstitutionalEmail(g ScheduleGroup) string { return g.InstructorEmail }
func PersonalEmail(g ScheduleGroup) string      { return g.InstructorPersonalEmail }

// NewRecipientPolicy returns the notification policy: override, institutional, personal.
func NewRecipientPolicy(override string) RecipientPolicy {
	return RecipientPolicy{Override(override), InstitutionalEmail, PersonalEmail}
}

// ContactPolicy is the address recorded on processing logs.
var ContactPolicy = RecipientPolicy{InstitutionalEmail, PersonalEmail}

func (p RecipientPolicy) Resolve(g ScheduleGroup) string {
	for _, rule := range p {
		if addr := strings.TrimSpace(rule(g)); addr != "" {
			return addr
		}
	}
	return ""
}
