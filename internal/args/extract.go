package args

// ExtractURLs pulls image URLs out of the handful of response shapes the
// hosted API is known to return: a list under "images", a list under
// "output", or a single value or list under "image". List elements are
// either URL strings or objects with a "url" field.
func ExtractURLs(result map[string]any) []string {
	if images, ok := result["images"].([]any); ok {
		return urlsFromList(images)
	}
	if output, ok := result["output"].([]any); ok {
		return urlsFromList(output)
	}
	if image, ok := result["image"]; ok {
		if list, ok := image.([]any); ok {
			return urlsFromList(list)
		}
		return urlsFromList([]any{image})
	}
	return []string{}
}

func urlsFromList(items []any) []string {
	urls := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			urls = append(urls, v)
		case map[string]any:
			if u, ok := v["url"].(string); ok {
				urls = append(urls, u)
			}
		}
	}
	return urls
}
