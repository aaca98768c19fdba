import (
	"fmt"

	"calculator"
)

func main() {
	fmt.Printf("add(15, 22) = %v\n", calculator.Add(15, 22))
	fmt.Printf("add(1.23, 2) = %v\n", calculator.Add(1.23, 2))

	fmt.Printf("sub(15, 22) = %v\n", calculator.Sub(15, 22))
	fmt.Printf("sub(15, 23.2) = %v\n", calculator.Sub(15, 23.2))

	fmt.Printf("mul(15, 22) = %v\n", calculator.Mul(15, 22))
	fmt.Printf("mul(1.5, 2.2) = %v\n", calculator.Mul(1.5, 2.2))

	q, _ := calculator.Div(15, 22)
	fmt.Printf("div(15, 22) = %v\n", q)
	q, _ = calculator.Div(15, 2.2)
	fmt.Printf("div(15, 2.2) = %v\n", q)

	if _, err := calculator.Div(15, 0); err != nil {
		fmt.Printf("div(15, 0) failed: %v\n", err)
	}
}
