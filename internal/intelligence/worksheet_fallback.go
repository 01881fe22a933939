package intelligence

import (
	"fmt"

	"github.com/sahayak-edu/sahayak/internal/domain"
)

// FallbackWorksheet returns the deterministic worksheet used when generation
// fails. Grades up to 3 get single-digit arithmetic; grades up to 5 get the
// mangoes word problem.
func FallbackWorksheet(grade domain.Grade, subject string) domain.Worksheet {
	subject = normalizeSubject(subject)
	return domain.Worksheet{
		Title:   domain.WorksheetTitle(grade, subject),
		Content: FallbackWorksheetContent(grade),
		Grade:   grade,
		Subject: subject,
		Source:  domain.SourceFallback,
	}
}

func FallbackWorksheetContent(grade domain.Grade) string {
	early := grade <= 3
	primary := grade <= 5

	pick := func(cond bool, a, b string) string {
		if cond {
			return a
		}
		return b
	}

	return fmt.Sprintf(`Name: _________________ Date: _________

MATHEMATICS WORKSHEET - GRADE %d

Based on the uploaded content, here are practice problems:

1. Solve the following addition problems:
   %s
   %s

2. Solve the following subtraction problems:
   %s
   %s

3. Word Problems:
   %s

4. Practice Section:
   Complete the following patterns:
   %s

Answer Key (for teacher):
1. %s
2. %s
3. %s
4. %s`,
		int(grade),
		pick(early, "5 + 3 = ___", "125 + 78 = ___"),
		pick(early, "7 + 2 = ___", "234 + 156 = ___"),
		pick(early, "9 - 4 = ___", "200 - 85 = ___"),
		pick(early, "8 - 3 = ___", "345 - 167 = ___"),
		pick(primary,
			"A farmer has 12 mangoes. He sells 5 mangoes. How many mangoes are left?",
			"A shopkeeper bought 250 items and sold 180 items. How many items are remaining?"),
		pick(early, "2, 4, 6, ___, ___", "5, 10, 15, ___, ___"),
		pick(early, "8, 9", "203, 390"),
		pick(early, "5, 5", "115, 178"),
		pick(primary, "7 mangoes", "70 items"),
		pick(early, "8, 10", "20, 25"),
	)
}
