package query

import "strings"

// Intent labels assigned by the classifier.
const (
	IntentProductSetup     = "product_setup"
	IntentTroubleshooting  = "troubleshooting"
	IntentBilling          = "billing"
	IntentAdvancedFeatures = "advanced_features"
	IntentPerformance      = "performance"
	IntentFeatureUsage     = "feature_usage"
	IntentDeveloper        = "developer"
	IntentSecurity         = "security"
	IntentSharing          = "sharing"
	IntentKnownIssue       = "known_issue"
	IntentComparison       = "comparison"
	IntentCancellation     = "cancellation"
	IntentTechnicalIssue   = "technical_issue"
	IntentOther            = "other"
)

// Classifier assigns an intent label to a query.
type Classifier interface {
	Classify(text string) string
}

// RuleClassifier is a keyword-rule classifier. Rule order matters: earlier
// rules win when a query matches several.
type RuleClassifier struct{}

// NewRuleClassifier returns the default rule set.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

type intentRule struct {
	intent string
	cues   []string
}

// Performance outranks troubleshooting, and known_issue outranks sharing, so
// "slow sync" and problematic shared-folder reports land on the right label.
var intentRules = []intentRule{
	{IntentProductSetup, []string{"sign up", "create account", "signup", "register"}},
	{IntentPerformance, []string{"slow", "performance", "lag", "bandwidth", "throttling"}},
	{IntentTroubleshooting, []string{"not syncing", "aren't syncing", "troubleshoot", "fix", "isn't syncing"}},
	{IntentBilling, []string{"billing", "charged", "subscription", "refund", "downgrade", "cancel"}},
	{IntentAdvancedFeatures, []string{"advanced", "version history", "selective sync", "sharing"}},
	{IntentFeatureUsage, []string{"how do i", "how can i", "where do i", "feature", "previous versions", "version"}},
	{IntentDeveloper, []string{"api", "sdk", "developer", "oauth", "webhook"}},
	{IntentSecurity, []string{"secure", "security", "encryption", "two-factor", "2fa", "privacy"}},
	{IntentKnownIssue, []string{"known issue", "bug", "can't see", "not visible", "investigating"}},
	{IntentTechnicalIssue, []string{"crash", "crashing", "mobile app", "app crashes"}},
	{IntentSharing, []string{"share ", "shared folder", "permission"}},
	{IntentComparison, []string{"difference", "compare", "free vs", "free and pro"}},
}

// Classify returns the intent label for text.
func (c *RuleClassifier) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, cue := range rule.cues {
			if strings.Contains(lower, cue) {
				if rule.intent == IntentBilling && strings.Contains(lower, "cancel") {
					return IntentCancellation
				}
				return rule.intent
			}
		}
	}
	return IntentOther
}
