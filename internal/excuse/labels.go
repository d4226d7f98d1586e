package excuse

var believabilityLabels = map[int]string{
	10: "Your grandma would believe this",
	9:  "Oscars not required",
	8:  "Pretty convincing stuff",
	7:  "Only slight skepticism expected",
	6:  "Might raise an eyebrow",
	5:  "Commit to the story",
	4:  "Creative liberties taken",
	3:  "Straight face required",
	2:  "Pure comedy - act accordingly",
	1:  "Don't even try to sell it",
}

// LabelForScore maps a 1-10 believability score to its label. Scores
// outside the table get the label for 5.
func LabelForScore(score int) string {
	if l, ok := believabilityLabels[score]; ok {
		return l
	}
	return believabilityLabels[5]
}
