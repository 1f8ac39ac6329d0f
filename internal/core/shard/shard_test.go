package shard

import (
	"fmt"
	"testing"
)

func TestGenerate_PrefixesAndOrder(t *testing.T) {
	hosts := []string{"m1.example", "m2.example"}
	got := Generate("123456", hosts)
	if len(got) != 6 {
		t.Fatalf("len = %d, want 6", len(got))
	}

	want := []struct{ vol, part string }{
		{"12", "1234"},
		{"123", "12345"},
		{"1234", "123456"},
	}
	for i, c := range got {
		mi, v := i/Variants+1, i%Variants+1
		if c.MirrorIndex != mi || c.Variant != v {
			t.Fatalf("candidate %d = mirror %d variant %d, want %d/%d", i, c.MirrorIndex, c.Variant, mi, v)
		}
		w := want[v-1]
		if c.Volume != w.vol || c.Part != w.part {
			t.Fatalf("candidate %d vol/part = %s/%s, want %s/%s", i, c.Volume, c.Part, w.vol, w.part)
		}
		if c.Host != hosts[mi-1] {
			t.Fatalf("candidate %d host = %s", i, c.Host)
		}
		if i > 0 && !got[i-1].Before(c) {
			t.Fatalf("candidate %d not strictly after %d", i, i-1)
		}
	}
	if got[0].URL != "https://m1.example/vol12/part1234/123456/info/ru/card.json" {
		t.Fatalf("url = %s", got[0].URL)
	}
}

func TestGenerate_DefaultHostsCount(t *testing.T) {
	hosts := DefaultHosts()
	if len(hosts) != 18 || hosts[0] != "basket-01.wbbasket.ru" || hosts[17] != "basket-18.wbbasket.ru" {
		t.Fatalf("hosts = %v", hosts)
	}
	if got := len(Generate("98765432", hosts)); got != 54 {
		t.Fatalf("len = %d, want 54", got)
	}
}

func TestGenerate_ShortIdentifierUsesWholeID(t *testing.T) {
	got := Generate("12345", []string{"h"})
	cases := []struct{ vol, part string }{
		{"12", "1234"},
		{"123", "12345"},
		{"1234", "12345"},
	}
	for i, c := range cases {
		if got[i].Volume != c.vol || got[i].Part != c.part {
			t.Fatalf("variant %d = %s/%s, want %s/%s", i+1, got[i].Volume, got[i].Part, c.vol, c.part)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate("55555555", DefaultHosts())
	b := Generate("55555555", DefaultHosts())
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("candidate %d differs between runs", i)
		}
	}
	if len(Generate("123456", nil)) != 0 {
		t.Fatalf("no hosts should yield no candidates")
	}
}

func TestAffinity_URLs(t *testing.T) {
	c := Generate("123456789", []string{"basket-07.wbbasket.ru"})[1]
	a := c.Affinity()
	if a.MirrorIndex != 1 || a.Volume != "123" || a.Part != "12345" {
		t.Fatalf("affinity = %+v", a)
	}
	base := "https://basket-07.wbbasket.ru/vol123/part12345/123456789"
	cases := map[string]string{
		a.ImageURL("123456789", ""):     base + "/images/big/1.jpg",
		a.ImageURL("123456789", "webp"): base + "/images/big/1.webp",
		a.PriceHistoryURL("123456789"):  base + "/info/price-history.json",
		a.CardURL("123456789"):          c.URL,
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("url = %s, want %s", got, want)
		}
	}
}

func TestAffinity_SchemeHost(t *testing.T) {
	a := Affinity{Host: "http://127.0.0.1:8080/", Volume: "12", Part: "1234"}
	if got, want := a.Base("123456"), "http://127.0.0.1:8080/vol12/part1234/123456"; got != want {
		t.Fatalf("Base = %s, want %s", got, want)
	}
}

func ExampleGenerate() {
	for _, c := range Generate("123456", []string{"basket-01.wbbasket.ru"}) {
		fmt.Println(c.Variant, c.URL)
	}
	// Output:
	// 1 https://basket-01.wbbasket.ru/vol12/part1234/123456/info/ru/card.json
	// 2 https://basket-01.wbbasket.ru/vol123/part12345/123456/info/ru/card.json
	// 3 https://basket-01.wbbasket.ru/vol1234/part123456/123456/info/ru/card.json
}
