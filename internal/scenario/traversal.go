package scenario

import (
	"context"
	"fmt"
)

type traversal func(s *Session, ctx context.Context) error

var traversals = map[Kind]traversal{
	Build: func(s *Session, ctx context.Context) error {
		return s.untilDive(ctx, s.build)
	},
	Write: (*Session).writeLoop,
	Crawl: func(s *Session, ctx context.Context) error {
		return s.untilDive(ctx, func(ctx context.Context, url string) error {
			return s.crawl(ctx, url, false)
		})
	},
	Read: (*Session).readLoop,
	CrawlAndUpdate: func(s *Session, ctx context.Context) error {
		return s.untilDive(ctx, func(ctx context.Context, url string) error {
			return s.crawl(ctx, url, true)
		})
	},
	ContentiousUpdate: (*Session).updateLoop,
}

// untilDive restarts walk from the root until the dive-out flag is latched.
// Every walk reads the root first, so each pass moves loaded forward or dives.
func (s *Session) untilDive(ctx context.Context, walk func(context.Context, string) error) error {
	for !s.diving {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := walk(ctx, s.params.Root); err != nil {
			return err
		}
	}
	return nil
}

// build fills url up to MaxPerFolder children, re-reading after every
// create, then descends into the existing children in listing order.
func (s *Session) build(ctx context.Context, url string) error {
	for {
		if s.diving {
			return nil
		}
		node, ok, err := s.read(ctx, url)
		if err != nil || !ok {
			return err
		}
		if s.exceeded() {
			return nil
		}
		if node.Length >= s.params.MaxPerFolder {
			for _, item := range node.Items {
				if s.diving {
					return nil
				}
				if err := s.build(ctx, item.URL); err != nil {
					return err
				}
			}
			return nil
		}
		if err := s.create(ctx, url); err != nil {
			return err
		}
		if s.exceeded() {
			return nil
		}
	}
}

// crawl reads url and descends depth first. With update set the children
// are visited in a random order and each is updated before it is read.
func (s *Session) crawl(ctx context.Context, url string, update bool) error {
	if s.diving {
		return nil
	}
	node, ok, err := s.read(ctx, url)
	if err != nil || !ok {
		return err
	}
	if s.exceeded() {
		return nil
	}
	items := node.Items
	if update {
		s.rng.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
	}
	for _, item := range items {
		if s.diving {
			return nil
		}
		if update {
			if err := s.update(ctx, item.URL); err != nil {
				return err
			}
		}
		if err := s.crawl(ctx, item.URL, update); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) writeLoop(ctx context.Context) error {
	for s.remaining() {
		if err := s.create(ctx, s.params.Root); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) readLoop(ctx context.Context) error {
	target, ok, err := s.firstChild(ctx)
	if err != nil || !ok {
		return err
	}
	for s.remaining() {
		if _, _, err := s.read(ctx, target); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) updateLoop(ctx context.Context) error {
	target, ok, err := s.firstChild(ctx)
	if err != nil || !ok {
		return err
	}
	for s.remaining() {
		if err := s.update(ctx, target); err != nil {
			return err
		}
	}
	return nil
}

// firstChild reads the root once and returns the URL of its first child.
func (s *Session) firstChild(ctx context.Context) (string, bool, error) {
	node, ok, err := s.read(ctx, s.params.Root)
	if err != nil || !ok {
		return "", false, err
	}
	if len(node.Items) == 0 {
		return "", false, fmt.Errorf("%w: %s", ErrNoChildren, s.params.Root)
	}
	return node.Items[0].URL, true, nil
}
