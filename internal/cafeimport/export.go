package cafeimport

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/phrazzld/reviewdesk/internal/domain"
)

// WriteText writes cafe links grouped by region. Each group starts with a
// "[region]" line and ends with a blank line; groups are sorted by name.
func WriteText(w io.Writer, cafes []*domain.Cafe) error {
	groups := make(map[string][]string)
	for _, c := range cafes {
		region := c.RegionOrDefault()
		if _, ok := groups[region]; !ok {
			groups[region] = nil
		}
		if c.Link != "" {
			groups[region] = append(groups[region], c.Link)
		}
	}

	regions := make([]string, 0, len(groups))
	for region := range groups {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	bw := bufio.NewWriter(w)
	for _, region := range regions {
		fmt.Fprintf(bw, "[%s]\n", region)
		for _, link := range groups[region] {
			fmt.Fprintln(bw, link)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// ExportFilename names a text export taken at now.
func ExportFilename(region string, now time.Time) string {
	if region == "" {
		region = "all"
	}
	return fmt.Sprintf("cafe-list-%s-%s.txt", region, now.Format("2006-01-02"))
}
