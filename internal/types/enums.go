package types

import (
	"strconv"
	"strings"
)

// normalizeEnum lower-cases and folds spaces and dashes into underscores so
// "Partially Resolved" and "partially-resolved" compare equal.
func normalizeEnum(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// parseEnum maps raw onto one of members, consulting aliases second.
// Anything unrecognized becomes fallback.
func parseEnum[T ~string](raw string, fallback T, aliases map[string]T, members ...T) T {
	key := normalizeEnum(raw)
	for _, m := range members {
		if string(m) == key {
			return m
		}
	}
	if v, ok := aliases[key]; ok {
		return v
	}
	return fallback
}

type Language string

const (
	LanguageLithuanian Language = "lt"
	LanguageEnglish    Language = "en"
	LanguageRussian    Language = "ru"
	LanguagePolish     Language = "pl"
	LanguageUnknown    Language = "unknown"
)

var languageAliases = map[string]Language{
	"lithuanian": LanguageLithuanian,
	"lietuvių":   LanguageLithuanian,
	"lietuviu":   LanguageLithuanian,
	"english":    LanguageEnglish,
	"russian":    LanguageRussian,
	"rusų":       LanguageRussian,
	"polish":     LanguagePolish,
	"lenkų":      LanguagePolish,
}

func ParseLanguage(raw string) Language {
	return parseEnum(raw, LanguageUnknown, languageAliases,
		LanguageLithuanian, LanguageEnglish, LanguageRussian, LanguagePolish, LanguageUnknown)
}

type EmotionalTone string

const (
	TonePositive   EmotionalTone = "positive"
	ToneNeutral    EmotionalTone = "neutral"
	ToneNegative   EmotionalTone = "negative"
	ToneFrustrated EmotionalTone = "frustrated"
	ToneAngry      EmotionalTone = "angry"
	ToneSatisfied  EmotionalTone = "satisfied"
	ToneConfused   EmotionalTone = "confused"
	ToneHappy      EmotionalTone = "happy"
)

func ParseEmotionalTone(raw string) EmotionalTone {
	return parseEnum(raw, ToneNeutral, nil,
		TonePositive, ToneNeutral, ToneNegative, ToneFrustrated, ToneAngry, ToneSatisfied, ToneConfused, ToneHappy)
}

type AgentTone string

const (
	AgentEmpathetic    AgentTone = "empathetic"
	AgentProfessional  AgentTone = "professional"
	AgentNeutral       AgentTone = "neutral"
	AgentCold          AgentTone = "cold"
	AgentInappropriate AgentTone = "inappropriate"
)

func ParseAgentTone(raw string) AgentTone {
	return parseEnum(raw, AgentNeutral, nil,
		AgentEmpathetic, AgentProfessional, AgentNeutral, AgentCold, AgentInappropriate)
}

type ToneAppropriateness string

const (
	ToneExcellent ToneAppropriateness = "excellent"
	ToneGood      ToneAppropriateness = "good"
	ToneAdequate  ToneAppropriateness = "adequate"
	TonePoor      ToneAppropriateness = "poor"
	ToneVeryPoor  ToneAppropriateness = "very_poor"
)

func ParseToneAppropriateness(raw string) ToneAppropriateness {
	return parseEnum(raw, ToneAdequate, nil, ToneExcellent, ToneGood, ToneAdequate, TonePoor, ToneVeryPoor)
}

type Stage string

const (
	StageGreeting              Stage = "greeting"
	StageProblemIdentification Stage = "problem_identification"
	StageInformationGathering  Stage = "information_gathering"
	StageProblemAnalysis       Stage = "problem_analysis"
	StageSolutionPresentation  Stage = "solution_presentation"
	StageProblemResolution     Stage = "problem_resolution"
	StageClosure               Stage = "closure"
	StageFarewell              Stage = "farewell"
	StageOther                 Stage = "other"
)

func ParseStage(raw string) Stage {
	return parseEnum(raw, StageOther, nil,
		StageGreeting, StageProblemIdentification, StageInformationGathering, StageProblemAnalysis,
		StageSolutionPresentation, StageProblemResolution, StageClosure, StageFarewell, StageOther)
}

type SatisfactionLevel string

const (
	VerySatisfied       SatisfactionLevel = "very_satisfied"
	Satisfied           SatisfactionLevel = "satisfied"
	SatisfactionNeutral SatisfactionLevel = "neutral"
	Dissatisfied        SatisfactionLevel = "dissatisfied"
	VeryDissatisfied    SatisfactionLevel = "very_dissatisfied"
)

func ParseSatisfactionLevel(raw string) SatisfactionLevel {
	return parseEnum(raw, SatisfactionNeutral, nil,
		VerySatisfied, Satisfied, SatisfactionNeutral, Dissatisfied, VeryDissatisfied)
}

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

func ParseTrend(raw string) Trend {
	return parseEnum(raw, TrendStable, nil, TrendImproving, TrendStable, TrendDeclining)
}

// ProblemStatus is the resolution state used by the comprehensive analysis.
type ProblemStatus string

const (
	ProblemResolved          ProblemStatus = "resolved"
	ProblemPartiallyResolved ProblemStatus = "partially_resolved"
	ProblemUnresolved        ProblemStatus = "unresolved"
	ProblemEscalated         ProblemStatus = "escalated"
	ProblemPending           ProblemStatus = "pending"
)

func ParseProblemStatus(raw string) ProblemStatus {
	return parseEnum(raw, ProblemPending, nil,
		ProblemResolved, ProblemPartiallyResolved, ProblemUnresolved, ProblemEscalated, ProblemPending)
}

// ResolutionStatus is the coarser state used by the conversation analysis.
// The oracle is asked to answer in Lithuanian, so the Lithuanian words are
// accepted too.
type ResolutionStatus string

const (
	Resolved   ResolutionStatus = "resolved"
	Unresolved ResolutionStatus = "unresolved"
	Unclear    ResolutionStatus = "unclear"
	Partial    ResolutionStatus = "partial"
)

var resolutionAliases = map[string]ResolutionStatus{
	"išspręsta":          Resolved,
	"issprensta":         Resolved,
	"neišspręsta":        Unresolved,
	"neissprensta":       Unresolved,
	"iš_dalies":          Partial,
	"is_dalies":          Partial,
	"dalinai":            Partial,
	"partially_resolved": Partial,
	"neaišku":            Unclear,
	"neaisku":            Unclear,
}

func ParseResolutionStatus(raw string) ResolutionStatus {
	return parseEnum(raw, Unclear, resolutionAliases, Resolved, Unresolved, Unclear, Partial)
}

type Category string

const (
	CategoryGeneralInfo        Category = "general_info"
	CategoryApplicationInquiry Category = "application_inquiry"
	CategoryTechnicalSupport   Category = "technical_support"
	CategoryBillingIssue       Category = "billing_issue"
	CategoryComplaint          Category = "complaint"
	CategoryServiceRequest     Category = "service_request"
	CategoryCancellation       Category = "cancellation"
	CategoryOther              Category = "other"
)

func ParseCategory(raw string) Category {
	return parseEnum(raw, CategoryOther, nil,
		CategoryGeneralInfo, CategoryApplicationInquiry, CategoryTechnicalSupport, CategoryBillingIssue,
		CategoryComplaint, CategoryServiceRequest, CategoryCancellation, CategoryOther)
}

type CustomerType string

const (
	CustomerNew         CustomerType = "new"
	CustomerExisting    CustomerType = "existing"
	CustomerVIP         CustomerType = "vip"
	CustomerProblematic CustomerType = "problematic"
	CustomerUnknown     CustomerType = "unknown"
)

func ParseCustomerType(raw string) CustomerType {
	return parseEnum(raw, CustomerUnknown, nil,
		CustomerNew, CustomerExisting, CustomerVIP, CustomerProblematic, CustomerUnknown)
}

type Urgency string

const (
	UrgencyUrgent Urgency = "urgent"
	UrgencyNormal Urgency = "normal"
	UrgencyLow    Urgency = "low"
)

func ParseUrgency(raw string) Urgency {
	return parseEnum(raw, UrgencyNormal, nil, UrgencyUrgent, UrgencyNormal, UrgencyLow)
}

// ReviewPriority is ordered: low < medium < high < urgent.
type ReviewPriority string

const (
	PriorityLow    ReviewPriority = "low"
	PriorityMedium ReviewPriority = "medium"
	PriorityHigh   ReviewPriority = "high"
	PriorityUrgent ReviewPriority = "urgent"
)

func ParseReviewPriority(raw string) ReviewPriority {
	return parseEnum(raw, PriorityMedium, nil, PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent)
}

func (p ReviewPriority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	}
	return -1
}

// MaxPriority returns the higher of a and b.
func MaxPriority(a, b ReviewPriority) ReviewPriority {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func ParseSeverity(raw string) Severity {
	return parseEnum(raw, SeverityMedium, nil, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical)
}

type MismatchSeverity string

const (
	MismatchLow    MismatchSeverity = "low"
	MismatchMedium MismatchSeverity = "medium"
	MismatchHigh   MismatchSeverity = "high"
)

func ParseMismatchSeverity(raw string) MismatchSeverity {
	return parseEnum(raw, MismatchMedium, nil, MismatchLow, MismatchMedium, MismatchHigh)
}

type AnnouncementStatus string

const (
	ProperlyAnnounced   AnnouncementStatus = "properly_announced"
	NotAnnounced        AnnouncementStatus = "not_announced"
	AnnouncementUnclear AnnouncementStatus = "unclear"
)

var announcementAliases = map[string]AnnouncementStatus{
	"announced":   ProperlyAnnounced,
	"unannounced": NotAnnounced,
}

func ParseAnnouncementStatus(raw string) AnnouncementStatus {
	return parseEnum(raw, AnnouncementUnclear, announcementAliases,
		ProperlyAnnounced, NotAnnounced, AnnouncementUnclear)
}

type PolitenessElementType string

const (
	ElementGreeting       PolitenessElementType = "greeting"
	ElementFarewell       PolitenessElementType = "farewell"
	ElementThanks         PolitenessElementType = "thanks"
	ElementApology        PolitenessElementType = "apology"
	ElementPlease         PolitenessElementType = "please"
	ElementCourtesyPhrase PolitenessElementType = "courtesy_phrase"
)

var elementAliases = map[string]PolitenessElementType{
	"courtesy":  ElementCourtesyPhrase,
	"thank_you": ElementThanks,
	"goodbye":   ElementFarewell,
}

func ParsePolitenessElementType(raw string) PolitenessElementType {
	return parseEnum(raw, ElementCourtesyPhrase, elementAliases,
		ElementGreeting, ElementFarewell, ElementThanks, ElementApology, ElementPlease, ElementCourtesyPhrase)
}

type Appropriateness string

const (
	AppropriatenessExcellent Appropriateness = "excellent"
	AppropriatenessGood      Appropriateness = "good"
	AppropriatenessAdequate  Appropriateness = "adequate"
	AppropriatenessPoor      Appropriateness = "poor"
	AppropriatenessMissing   Appropriateness = "missing"
)

func ParseAppropriateness(raw string) Appropriateness {
	return parseEnum(raw, AppropriatenessAdequate, nil,
		AppropriatenessExcellent, AppropriatenessGood, AppropriatenessAdequate, AppropriatenessPoor, AppropriatenessMissing)
}

type Completeness string

const (
	CompletenessComplete Completeness = "complete"
	CompletenessPartial  Completeness = "partial"
	CompletenessMissing  Completeness = "missing"
	CompletenessUnclear  Completeness = "unclear"
)

func ParseCompleteness(raw string) Completeness {
	return parseEnum(raw, CompletenessUnclear, nil,
		CompletenessComplete, CompletenessPartial, CompletenessMissing, CompletenessUnclear)
}

type IndicatorType string

const (
	IndicatorPhrase    IndicatorType = "phrase"
	IndicatorSentiment IndicatorType = "sentiment"
	IndicatorTone      IndicatorType = "tone"
)

func ParseIndicatorType(raw string) IndicatorType {
	return parseEnum(raw, IndicatorPhrase, nil, IndicatorPhrase, IndicatorSentiment, IndicatorTone)
}

type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

func ParseImpact(raw string) Impact {
	return parseEnum(raw, ImpactNeutral, nil, ImpactPositive, ImpactNegative, ImpactNeutral)
}

// Party is who said something in an analysis finding. Unlike Speaker it never
// carries diarization labels.
type Party string

const (
	PartyAgent    Party = "agent"
	PartyCustomer Party = "customer"
	PartyBoth     Party = "both"
	PartyUnknown  Party = "unknown"
)

var partyAliases = map[string]Party{
	"operator":    PartyAgent,
	"operatorius": PartyAgent,
	"system":      PartyAgent,
	"client":      PartyCustomer,
	"klientas":    PartyCustomer,
}

func ParseParty(raw string) Party {
	return parseEnum(raw, PartyUnknown, partyAliases, PartyAgent, PartyCustomer, PartyBoth, PartyUnknown)
}

// Speaker labels a transcript segment: a role, a diarization label
// (speaker1..speakerN) or the silence sentinel.
type Speaker string

const (
	SpeakerCustomer Speaker = "customer"
	SpeakerAgent    Speaker = "agent"
	SpeakerSystem   Speaker = "system"
	SpeakerSilence  Speaker = "silence"
)

// ParseSpeaker accepts "Speaker 1", "speaker_1" and "SPEAKER1" as speaker1.
// It reports false for anything outside the closed set.
func ParseSpeaker(raw string) (Speaker, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
	switch Speaker(s) {
	case SpeakerCustomer, SpeakerAgent, SpeakerSystem, SpeakerSilence:
		return Speaker(s), true
	}
	if n, ok := strings.CutPrefix(s, "speaker"); ok {
		if i, err := strconv.Atoi(n); err == nil && i > 0 {
			return Speaker("speaker" + strconv.Itoa(i)), true
		}
	}
	return "", false
}

func (s Speaker) IsSilence() bool { return s == SpeakerSilence }
