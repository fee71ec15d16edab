package mandel

import "testing"

func TestParsePairInt(t *testing.T) {
	tests := []struct {
		in     string
		l, r   int
		wantOK bool
	}{
		{"", 0, 0, false},
		{"10", 0, 0, false},
		{"10,", 0, 0, false},
		{",10", 0, 0, false},
		{"10,20", 10, 20, true},
		{"10,20xy", 0, 0, false},
		{"10,20,30", 0, 0, false},
		{"-3,+4", -3, 4, true},
	}
	for _, tt := range tests {
		l, r, ok := ParsePair(tt.in, ',', ParseInt)
		if ok != tt.wantOK || l != tt.l || r != tt.r {
			t.Errorf("ParsePair(%q, ',') = (%d, %d, %v), want (%d, %d, %v)", tt.in, l, r, ok, tt.l, tt.r, tt.wantOK)
		}
	}
}

func TestParsePairFloat(t *testing.T) {
	l, r, ok := ParsePair("0.5x1.5", 'x', ParseFloat)
	if !ok || l != 0.5 || r != 1.5 {
		t.Errorf("ParsePair(\"0.5x1.5\", 'x') = (%v, %v, %v), want (0.5, 1.5, true)", l, r, ok)
	}
	if _, _, ok := ParsePair("0.5x", 'x', ParseFloat); ok {
		t.Error("ParsePair(\"0.5x\", 'x') succeeded, want failure")
	}
}

func TestParseFloatDecimalOnly(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.5", 1.5, true},
		{"-.25", -0.25, true},
		{"1e3", 1000, true},
		{"+2", 2, true},
		{"0x1p-2", 0, false},
		{"0X10", 0, false},
		{"0x_1p0", 0, false},
		{"1_000", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseFloat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFloat(%q) = (%v, %v), want %v ok=%v", tt.in, got, err, tt.want, tt.ok)
		}
	}
	if c, ok := ParseComplex("0x1p-2,0"); ok {
		t.Errorf("ParseComplex(\"0x1p-2,0\") = %v, want failure", c)
	}
}

func TestParsePairNoSeparator(t *testing.T) {
	for _, s := range []string{"", "1", "1.5", "abc", "1;2", "1x2"} {
		if _, _, ok := ParsePair(s, ',', ParseFloat); ok {
			t.Errorf("ParsePair(%q, ',') succeeded without a separator", s)
		}
	}
}

func TestParsePairMultiByteSeparator(t *testing.T) {
	l, r, ok := ParsePair("3×4", '×', ParseInt)
	if !ok || l != 3 || r != 4 {
		t.Errorf("ParsePair(\"3×4\", '×') = (%d, %d, %v), want (3, 4, true)", l, r, ok)
	}
}

func TestParseComplex(t *testing.T) {
	c, ok := ParseComplex("1.25,-0.0625")
	if !ok || c != complex(1.25, -0.0625) {
		t.Errorf("ParseComplex(\"1.25,-0.0625\") = (%v, %v), want ((1.25-0.0625i), true)", c, ok)
	}
	if c, ok := ParseComplex(",-0.0625"); ok {
		t.Errorf("ParseComplex(\",-0.0625\") = %v, want failure", c)
	}
}

func TestParseBounds(t *testing.T) {
	tests := []struct {
		in     string
		want   Bounds
		wantOK bool
	}{
		{"1920x1080", Bounds{1920, 1080}, true},
		{"1x1", Bounds{1, 1}, true},
		{"0x100", Bounds{}, false},
		{"100x-1", Bounds{}, false},
		{"100", Bounds{}, false},
		{"100x", Bounds{}, false},
		{"1.5x2", Bounds{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseBounds(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseBounds(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLookupRegion(t *testing.T) {
	for _, name := range []string{"SeahorseValley", "seahorse-valley", "SEAHORSE_VALLEY"} {
		v, ok := LookupRegion(name)
		if !ok || v != SeahorseValley {
			t.Errorf("LookupRegion(%q) = (%v, %v), want SeahorseValley", name, v, ok)
		}
	}
	if _, ok := LookupRegion("nowhere"); ok {
		t.Error("LookupRegion(\"nowhere\") succeeded")
	}
	for _, n := range RegionNames() {
		v, ok := LookupRegion(n)
		if !ok {
			t.Errorf("RegionNames() lists %q which LookupRegion does not find", n)
			continue
		}
		if imag(v.UpperLeft) < imag(v.LowerRight) {
			t.Errorf("region %q has its upper edge below its lower edge", n)
		}
	}
}
