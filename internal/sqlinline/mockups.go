package sqlinline

const QEnsureSchema = `--sql 9e72ea70-99a5-4103-a0a4-a8d501aebb22
create table if not exists mockup_jobs (
    id uuid primary key,
    status text not null default 'QUEUED',
    scheme text not null,
    canvas_key text not null,
    canvas_sha256 text not null default '',
    preview_key text not null default '',
    task_key text not null default '',
    result_urls text[] not null default '{}',
    error_kind text not null default '',
    error_message text not null default '',
    attempts integer not null default 0,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
create index if not exists mockup_jobs_queue_idx on mockup_jobs (status, created_at);
create table if not exists integration_tokens (
    id uuid primary key,
    provider text not null unique,
    token text not null,
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`

const QMockupCreate = `--sql 502cc0f8-ac73-4613-a065-fd299593d2d2
insert into mockup_jobs (id, status, scheme, canvas_key, canvas_sha256, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, now(), now())
returning created_at, updated_at;
`

const QMockupGet = `--sql cea3cb2b-f205-46a3-aac7-94cc64900787
select id::text, status, scheme, canvas_key, canvas_sha256, preview_key, task_key,
       result_urls, error_kind, error_message, created_at, updated_at
from mockup_jobs
where id = $1::uuid;
`

const QMockupClaimNext = `--sql c03cb8af-a1e0-4aba-9eac-0ab5984827b2
with next_job as (
    select id
    from mockup_jobs
    where status = 'QUEUED'
    order by created_at asc
    for update skip locked
    limit 1
),
updated as (
    update mockup_jobs
    set status = 'RUNNING', attempts = attempts + 1, updated_at = now()
    where id in (select id from next_job)
    returning id::text, status, scheme, canvas_key, canvas_sha256, preview_key, task_key,
              result_urls, error_kind, error_message, created_at, updated_at
)
select * from updated;
`

const QMockupSetTaskKey = `--sql 24a36b2e-92b0-4498-af98-c25451f4450f
update mockup_jobs
set task_key = $2::text, updated_at = now()
where id = $1::uuid;
`

const QMockupSetPreviewKey = `--sql ff1b3631-e9b6-4592-ab53-c9dc4b842d84
update mockup_jobs
set preview_key = $2::text, updated_at = now()
where id = $1::uuid;
`

const QMockupComplete = `--sql 57c9466a-b85b-4500-ae70-8c1eb47226f6
update mockup_jobs
set status = 'SUCCEEDED',
    result_urls = $2::text[],
    error_kind = '',
    error_message = '',
    updated_at = now()
where id = $1::uuid and status = 'RUNNING';
`

const QMockupFail = `--sql a73072c0-e490-4b97-88d8-2cb57b2c2fc1
update mockup_jobs
set status = 'FAILED',
    error_kind = $2::text,
    error_message = $3::text,
    updated_at = now()
where id = $1::uuid and status in ('QUEUED', 'RUNNING');
`

// QMockupRequeue hands an interrupted run back to the queue. The task key is
// cleared because the next claim submits again.
const QMockupRequeue = `--sql 20c79629-364a-4ef4-af81-277078b163c5
update mockup_jobs
set status = 'QUEUED',
    task_key = '',
    updated_at = now()
where id = $1::uuid and status = 'RUNNING';
`
