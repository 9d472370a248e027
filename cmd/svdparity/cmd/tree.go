package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/OpenTraceLab/svdparity/pkg/svd"
)

func printTree(w io.Writer, ps []svd.Peripheral) {
	for i := range ps {
		p := &ps[i]
		fmt.Fprintf(w, "%s @ 0x%08X  size %d  %s", p.Name, p.BaseAddress, p.Size, p.Access)
		if p.GroupName != "" {
			fmt.Fprintf(w, "  group %s", p.GroupName)
		}
		fmt.Fprintln(w)

		for _, b := range p.AddressBlocks {
			fmt.Fprintf(w, "  addressBlock 0x%X +0x%X %s\n", b.Offset, b.Size, b.Usage)
		}
		for _, irq := range p.Interrupts {
			fmt.Fprintf(w, "  interrupt %s = %d\n", irq.Name, irq.Value)
		}
		printElements(w, p.Elements, 1)
	}
}

func printElements(w io.Writer, es []svd.Element, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range es {
		switch e.Kind() {
		case svd.KindRegister:
			r := e.Register
			fmt.Fprintf(w, "%sregister %s @ 0x%08X (+0x%X)  size %d  %s  reset 0x%X/0x%X\n",
				indent, r.Name, r.BaseAddress, r.AddressOffset, r.Size, r.Access, r.ResetValue, r.ResetMask)
			for _, f := range r.Fields {
				printField(w, &f, depth+1)
			}
		case svd.KindCluster:
			c := e.Cluster
			fmt.Fprintf(w, "%scluster %s @ 0x%08X (+0x%X)\n", indent, c.Name, c.BaseAddress, c.AddressOffset)
			printElements(w, c.Elements, depth+1)
		}
	}
}

func printField(w io.Writer, f *svd.Field, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%sfield %s %s  %s\n", indent, f.Name, f.BitRange(), f.Access)
	for _, c := range f.EnumeratedValueContainers {
		fmt.Fprintf(w, "%s  enumeratedValues %s\n", indent, c.Usage)
		for _, v := range c.Values {
			fmt.Fprintf(w, "%s    %s = %d\n", indent, v.Name, v.Value)
		}
	}
}
