package sqlinline

const QEnqueueJob = `--sql 7c1f4a2e-9b3d-4c8a-b1e5-2f6d8a0c4e7b
insert into animation_jobs(
  id,
  status,
  prompt,
  aspect_ratio,
  logo_key,
  logo_mime,
  created_at,
  updated_at
) values (
  gen_random_uuid(),
  'QUEUED',
  $1::text,
  $2::text,
  $3::text,
  $4::text,
  now(),
  now()
) returning id;
`

const QSelectJob = `--sql 3e8b9d07-52c6-4f1a-8d34-b7a1c95e20f6
select id, status, prompt, aspect_ratio, logo_key, logo_mime, coalesce(error_message, ''), created_at, updated_at
from animation_jobs
where id = $1::uuid
limit 1;
`

const QClaimJob = `--sql a94d2c61-7e08-4b5f-9c12-d3f60a84be25
with next_job as (
    select id
    from animation_jobs
    where status = 'QUEUED'
    order by created_at asc
    for update skip locked
    limit 1
),
updated as (
    update animation_jobs
    set status = 'RUNNING', updated_at = now()
    where id in (select id from next_job)
    returning id, prompt, aspect_ratio, logo_key, logo_mime
)
select * from updated;
`

const QMarkJobSucceeded = `--sql f5276e93-1a4c-4d8b-a760-8c35d1b9e042
update animation_jobs
set status = 'SUCCEEDED', error_message = null, updated_at = now()
where id = $1::uuid;
`

const QMarkJobFailed = `--sql 0b81c5d4-63f2-47ae-9b08-745a2ec6d913
update animation_jobs
set status = 'FAILED', error_message = $2::text, updated_at = now()
where id = $1::uuid;
`
