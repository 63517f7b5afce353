package generate_test

import (
	"fmt"
	"math/rand/v2"

	"github.com/matzehuels/betwixt/pkg/generate"
)

func ExampleGenerator_Generate() {
	rng := rand.New(rand.NewPCG(42, 42^0xdeadbeef))
	g, err := generate.New(20, generate.Random, rng)
	if err != nil {
		panic(err)
	}

	k := generate.ConstraintsFor(20, generate.DefaultRatio)
	set, err := g.Generate(k)
	if err != nil {
		panic(err)
	}

	fmt.Println("constraints:", set.Len())
	fmt.Println("canonical order valid:", generate.Verify(set, 20) == nil)
	// Output:
	// constraints: 49
	// canonical order valid: true
}
