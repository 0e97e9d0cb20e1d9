package html

// DefaultTag is the tag recorded for a class whose element cannot be located
const DefaultTag = "div"

// ClassRecord pairs a tracked class with the tag of the first element carrying it
type ClassRecord struct {
	ClassName string
	TagName   string
}
