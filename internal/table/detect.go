package table

import "locedit/internal/jsontree"

// DetectFormat classifies a parsed document structurally. Filenames and
// extensions play no part; a document either matches one of the two
// known shapes in full or is unknown.
func DetectFormat(root *jsontree.Node) Format {
	if root == nil || root.Kind != jsontree.Array || len(root.Items) == 0 {
		return FormatUnknown
	}
	first := root.Items[0]

	if isDialogueItem(first) {
		for _, item := range root.Items {
			if !isDialogueItem(item) {
				return FormatUnknown
			}
		}
		return FormatDLGE
	}

	if first.Kind == jsontree.Array && len(first.Items) > 0 {
		if !isLanguageTag(first.Items[0]) {
			return FormatUnknown
		}
		if len(first.Items) > 1 && !isStringItem(first.Items[1]) {
			return FormatUnknown
		}
		for _, block := range root.Items {
			if block.Kind != jsontree.Array || len(block.Items) == 0 || !isLanguageTag(block.Items[0]) {
				return FormatUnknown
			}
		}
		return FormatLOCR
	}

	return FormatUnknown
}

func isDialogueItem(n *jsontree.Node) bool {
	if n == nil || n.Kind != jsontree.Object {
		return false
	}
	_, hasLang := n.Field("Language")
	_, hasString := n.Field("String")
	return hasLang && hasString
}

func isLanguageTag(n *jsontree.Node) bool {
	if n == nil || n.Kind != jsontree.Object {
		return false
	}
	_, ok := n.Field("Language")
	return ok
}

func isStringItem(n *jsontree.Node) bool {
	if n == nil || n.Kind != jsontree.Object {
		return false
	}
	_, hasString := n.Field("String")
	_, hasHash := n.Field("StringHash")
	return hasString && hasHash
}
