package krholiday_test

import (
	"fmt"
	"time"

	krholiday "github.com/rabitt1ove/kr-holidays"
)

var kst = time.FixedZone("Asia/Seoul", 9*60*60)

func ExampleIsHoliday() {
	t := time.Date(2024, time.September, 17, 0, 0, 0, 0, kst)
	fmt.Println(krholiday.IsHoliday(t))
	// Output: true
}

func ExampleHolidayName() {
	t := time.Date(2024, time.September, 17, 0, 0, 0, 0, kst)
	fmt.Println(krholiday.HolidayName(t))
	// Output: Chuseok
}

func ExampleHolidaysInMonth() {
	holidays, err := krholiday.HolidaysInMonth(2024, time.February)
	if err != nil {
		panic(err)
	}
	for _, h := range holidays {
		fmt.Printf("%s: %s\n", h.Date.Format("01-02"), h.Name)
	}
	// Output:
	// 02-09: Seollal Holiday
	// 02-10: Seollal
	// 02-11: Seollal Holiday
	// 02-12: Seollal Alternative Statutory Holiday
}

func ExampleNew() {
	kr, err := krholiday.New("KR", krholiday.WithLanguage(krholiday.Local))
	if err != nil {
		panic(err)
	}
	name, ok, err := kr.Get("2024-05-06")
	if err != nil {
		panic(err)
	}
	fmt.Println(name, ok)
	// Output: 어린이날 대체공휴일 true
}

func ExampleHolidaySet_Update() {
	kr, err := krholiday.New("KR", krholiday.WithObserved(false))
	if err != nil {
		panic(err)
	}
	if err := kr.Update(map[string]string{"2015-07-10": "Custom"}); err != nil {
		panic(err)
	}
	if err := kr.Update([]string{"2015-07-01"}); err != nil {
		panic(err)
	}
	for _, day := range []string{"2015-07-10", "2015-07-01", "2015-08-14"} {
		name, _, _ := kr.Get(day)
		fmt.Println(day, name)
	}
	// Output:
	// 2015-07-10 Custom
	// 2015-07-01 Holiday
	// 2015-08-14 70th Anniversary of Liberation Day (Temporary Holiday)
}

func ExampleHolidaySet_Range() {
	kr, err := krholiday.New("KR", krholiday.WithYears(2025))
	if err != nil {
		panic(err)
	}
	dates, err := kr.Range("2025-10-01", "2025-10-10")
	if err != nil {
		panic(err)
	}
	for _, day := range dates {
		fmt.Println(day.Format("2006-01-02"), kr.HolidayName(day))
	}
	// Output:
	// 2025-10-03 Foundation Day
	// 2025-10-05 Chuseok Holiday
	// 2025-10-06 Chuseok
	// 2025-10-07 Chuseok Holiday
	// 2025-10-08 Chuseok Alternative Statutory Holiday
	// 2025-10-09 Hangul Day
}

func ExampleIsBusinessDay() {
	fmt.Println(krholiday.IsBusinessDay(time.Date(2024, time.June, 10, 0, 0, 0, 0, kst))) // Monday
	fmt.Println(krholiday.IsBusinessDay(time.Date(2024, time.June, 8, 0, 0, 0, 0, kst)))  // Saturday
	fmt.Println(krholiday.IsBusinessDay(time.Date(2024, time.June, 6, 0, 0, 0, 0, kst)))  // Holiday
	// Output:
	// true
	// false
	// false
}

func ExampleNextBusinessDay() {
	eve := time.Date(2024, time.February, 9, 0, 0, 0, 0, kst)
	next := krholiday.NextBusinessDay(eve)
	fmt.Println(next.Format("2006-01-02"))
	// Output: 2024-02-13
}
