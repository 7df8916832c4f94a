package catalog

import "regexp"

// Compiled detection patterns and the unit vocabulary. Package-level and
// immutable after init, so concurrent document workers can share them
// without locking.
var (
	// priceRe matches an optional currency marker followed by a number that
	// may use thousands separators and a decimal part. Any line it matches is
	// treated as a price line.
	priceRe = regexp.MustCompile(`(?i)(₹|rs\.?|inr)?\s*([0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]+)?|[0-9]+(?:\.[0-9]+)?)`)

	// skuRe matches a labelled stock-keeping token: an optional label followed
	// by at least three alphanumeric/dash/underscore/slash characters.
	skuRe = regexp.MustCompile(`(?i)(?:sku|item code|code|model)[:\s-]*([A-Za-z0-9][A-Za-z0-9\-_/]{2,})`)

	// unitRe matches the controlled unit vocabulary on whole-token boundaries.
	unitRe = regexp.MustCompile(`(?i)\b(ml|l|litre|g|kg|pcs?|pack|set|cm|mm|inch|in|ft|m)\b`)

	// headerKeywordRe marks lines that look like table headers rather than
	// product names.
	headerKeywordRe = regexp.MustCompile(`(?i)price|mrp|size|variant|qty|quantity`)

	letterRe   = regexp.MustCompile(`[A-Za-z]`)
	digitRe    = regexp.MustCompile(`[0-9]`)
	spaceRunRe = regexp.MustCompile(`\s{2,}`)
)

const (
	// nameScanLines is how many leading lines are inspected for the product
	// name and SKU.
	nameScanLines = 5

	// descriptionLimit caps description snippets, in characters.
	descriptionLimit = 400

	// descriptionSnippetLines is how many non-price lines feed the shared
	// description snippet.
	descriptionSnippetLines = 3
)
