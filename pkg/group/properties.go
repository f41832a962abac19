package group

// ComputeProperties counts the entries of data and how many entries share
// each distinct value. Values are used verbatim as tier keys, so data should
// go through FormatData first.
func ComputeProperties(data FetchedData) Properties {
	tierDistribution := make(map[string]int)
	accountsNumber := 0
	for _, tier := range data {
		tierDistribution[string(tier)]++
		accountsNumber++
	}
	return Properties{
		AccountsNumber:   accountsNumber,
		TierDistribution: tierDistribution,
	}
}
